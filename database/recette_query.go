package database

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination par défaut des listes de recettes
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1_000_000
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindObjectID
	kindDate
)

type recetteField struct {
	bson string
	kind fieldKind
}

// recetteFields associe les noms de l'API aux champs stockés; les autres paramètres sont ignorés
var recetteFields = map[string]recetteField{
	"id":                {"_id", kindObjectID},
	"_id":               {"_id", kindObjectID},
	"titre":             {"titre", kindString},
	"description":       {"description", kindString},
	"ingredients":       {"ingredients", kindString},
	"ingredients.nom":   {"ingredients.nom", kindString},
	"ingredients.unite": {"ingredients.unite", kindString},
	"etapesPreparation": {"etapes_preparation", kindString},
	"tempsPreparation":  {"temps_preparation", kindInt},
	"tempsCuisson":      {"temps_cuisson", kindInt},
	"portions":          {"portions", kindInt},
	"difficulte":        {"difficulte", kindString},
	"categories":        {"categories", kindString},
	"tags":              {"tags", kindString},
	"image":             {"image", kindString},
	"createur":          {"createur", kindObjectID},
	"notes":             {"notes", kindString},
	"noteMoyenne":       {"note_moyenne", kindFloat},
	"dateCreation":      {"date_creation", kindDate},
}

var reservedParams = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
	"search": true,
}

var operatorParam = regexp.MustCompile(`^(\w+(?:\.\w+)?)\[(gt|gte|lt|lte|in)\]$`)

// ListQuery est la traduction des paramètres de GET /api/recettes
type ListQuery struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Fields     []string
	Page       int
	Limit      int
}

// Skip retourne le nombre de documents à sauter
func (q ListQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

// ParseListQuery construit filtre, tri, projection et pagination à partir de la query string
func ParseListQuery(values url.Values) (ListQuery, error) {
	q := ListQuery{
		Filter: bson.M{},
		Page:   parsePositive(values.Get("page"), DefaultPage),
		Limit:  parsePositive(values.Get("limit"), DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}

	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}

		name, op := key, "eq"
		if m := operatorParam.FindStringSubmatch(key); m != nil {
			name, op = m[1], m[2]
		}

		field, ok := recetteFields[name]
		if !ok {
			continue
		}

		value, err := castFilterValue(field, op, vals[0])
		if err != nil {
			return ListQuery{}, fmt.Errorf("paramètre %s invalide: %w", key, err)
		}

		ops, _ := q.Filter[field.bson].(bson.M)
		if ops == nil {
			ops = bson.M{}
			q.Filter[field.bson] = ops
		}
		ops["$"+op] = value
	}

	if search := strings.TrimSpace(values.Get("search")); search != "" {
		pattern := bson.M{BSONRegex: regexp.QuoteMeta(search), BSONOptions: "i"}
		q.Filter[BSONOr] = bson.A{
			bson.M{"titre": pattern},
			bson.M{"description": pattern},
			bson.M{"ingredients.nom": pattern},
			bson.M{"categories": pattern},
		}
	}

	q.Sort = parseSort(values.Get("sort"))

	if sel := values.Get("select"); sel != "" {
		q.Projection = bson.M{}
		for _, name := range splitComma(sel) {
			field, ok := recetteFields[name]
			if !ok {
				continue
			}
			q.Projection[field.bson] = 1
			q.Fields = append(q.Fields, name)
		}
		if len(q.Projection) == 0 {
			q.Projection = nil
		}
	}

	return q, nil
}

// parseSort transforme "a,-b" en tri MongoDB; -dateCreation par défaut
func parseSort(value string) bson.D {
	sort := bson.D{}
	seen := map[string]bool{}
	for _, name := range splitComma(value) {
		dir := 1
		if strings.HasPrefix(name, "-") {
			dir = -1
			name = name[1:]
		}
		field, ok := recetteFields[name]
		if !ok || seen[field.bson] {
			continue
		}
		seen[field.bson] = true
		sort = append(sort, bson.E{Key: field.bson, Value: dir})
	}
	if len(sort) == 0 {
		sort = append(sort, bson.E{Key: "date_creation", Value: -1})
	}
	// Ordre stable entre les pages
	if !seen["_id"] {
		sort = append(sort, bson.E{Key: "_id", Value: -1})
	}
	return sort
}

func castFilterValue(field recetteField, op, raw string) (interface{}, error) {
	if op != "in" {
		return castValue(field.kind, raw)
	}
	list := bson.A{}
	for _, part := range splitComma(raw) {
		v, err := castValue(field.kind, part)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, nil
}

func castValue(kind fieldKind, raw string) (interface{}, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(raw)
	case kindFloat:
		return strconv.ParseFloat(raw, 64)
	case kindObjectID:
		return primitive.ObjectIDFromHex(raw)
	case kindDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", raw)
	}
	return raw, nil
}

func parsePositive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func splitComma(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
