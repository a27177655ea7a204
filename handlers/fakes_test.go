package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"monpetitchef-backend/database"
	"monpetitchef-backend/middleware"
	"monpetitchef-backend/models"
	"monpetitchef-backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const testSecret = "secret-de-test"

// fakeUsers est un UserStore en mémoire
type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) add(t *testing.T, nom, email, password, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	user := &models.User{Nom: nom, Prenom: nom, Email: email, Password: hash, Role: role}
	if err := f.Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return user
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("erreur lors de la création de l'utilisateur: %w", mongo.WriteException{
				WriteErrors: []mongo.WriteError{{
					Code:    11000,
					Message: fmt.Sprintf(`E11000 duplicate key error collection: monpetitchef.users index: email_1 dup key: { email: "%s" }`, user.Email),
				}},
			})
		}
	}

	user.ID = primitive.NewObjectID()
	user.DateInscription = time.Now()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	if user.RecettesFavorites == nil {
		user.RecettesFavorites = []primitive.ObjectID{}
	}
	copie := *user
	f.users[user.ID] = &copie
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			copie := *u
			return &copie, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copie := *u
		copie.RecettesFavorites = append([]primitive.ObjectID{}, u.RecettesFavorites...)
		return &copie, nil
	}
	return nil, nil
}

func (f *fakeUsers) FindAll(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	f.mu.Lock()
	u, ok := f.users[id]
	if ok {
		for key, value := range fields {
			switch key {
			case "nom":
				u.Nom = value.(string)
			case "prenom":
				u.Prenom = value.(string)
			case "email":
				u.Email = value.(string)
			case "role":
				u.Role = value.(string)
			case "avatar":
				u.Avatar = value.(string)
			}
		}
	}
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return f.FindByID(context.Background(), id)
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Password = hash
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	delete(f.users, id)
	return ok, nil
}

// addToSet et pull reproduisent $addToSet et $pull sur les favoris
func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func (f *fakeUsers) AddFavori(_ context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	u.RecettesFavorites = addToSet(u.RecettesFavorites, recetteID)
	return append([]primitive.ObjectID{}, u.RecettesFavorites...), nil
}

func (f *fakeUsers) RemoveFavori(_ context.Context, userID, recetteID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	u.RecettesFavorites = pull(u.RecettesFavorites, recetteID)
	return append([]primitive.ObjectID{}, u.RecettesFavorites...), nil
}

func (f *fakeUsers) PullFavoris(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		avant := len(u.RecettesFavorites)
		for _, id := range ids {
			u.RecettesFavorites = pull(u.RecettesFavorites, id)
		}
		if len(u.RecettesFavorites) != avant {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) FindAuteurs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Auteur, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]models.Auteur{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u.Auteur()
		}
	}
	return out, nil
}

// fakeRecettes est un RecetteStore en mémoire
type fakeRecettes struct {
	mu       sync.Mutex
	recettes map[primitive.ObjectID]*models.Recette
	// conflitNote simule une recette modifiée à chaque tentative de notation
	conflitNote bool
}

func newFakeRecettes() *fakeRecettes {
	return &fakeRecettes{recettes: map[primitive.ObjectID]*models.Recette{}}
}

func (f *fakeRecettes) add(titre string, createur primitive.ObjectID) *models.Recette {
	recette := &models.Recette{
		Titre:             titre,
		Description:       "Une description suffisamment longue",
		Ingredients:       []models.Ingredient{{Nom: "Farine", Quantite: "200g"}},
		EtapesPreparation: []string{"Mélanger le tout"},
		TempsPreparation:  10,
		Portions:          4,
		Categories:        []string{"Dessert"},
		Createur:          createur,
	}
	f.Create(context.Background(), recette)
	return recette
}

func (f *fakeRecettes) Create(_ context.Context, recette *models.Recette) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recette.ID = primitive.NewObjectID()
	recette.DateCreation = time.Now().Add(time.Duration(len(f.recettes)) * time.Second)
	recette.AppliquerDefauts()
	recette.CalculerNoteMoyenne()
	copie := *recette
	f.recettes[recette.ID] = &copie
	return nil
}

func (f *fakeRecettes) FindByID(_ context.Context, id primitive.ObjectID) (*models.Recette, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.recettes[id]; ok {
		copie := *r
		copie.Notes = append([]models.Note{}, r.Notes...)
		return &copie, nil
	}
	return nil, nil
}

// sorted retourne les recettes de la plus récente à la plus ancienne
func (f *fakeRecettes) sorted() []models.Recette {
	out := []models.Recette{}
	for _, r := range f.recettes {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreation.After(out[j].DateCreation) })
	return out
}

func (f *fakeRecettes) List(_ context.Context, q database.ListQuery) ([]models.Recette, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var search *regexp.Regexp
	if or, ok := q.Filter["$or"].(bson.A); ok {
		pattern := or[0].(bson.M)["titre"].(bson.M)[database.BSONRegex].(string)
		search = regexp.MustCompile("(?i)" + pattern)
	}

	matched := []models.Recette{}
	for _, r := range f.sorted() {
		if search == nil || search.MatchString(r.Titre) || search.MatchString(r.Description) {
			matched = append(matched, r)
		}
	}

	start := int(q.Skip())
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], int64(len(matched)), nil
}

func (f *fakeRecettes) FindTop(_ context.Context, sortField string, limit int) ([]models.Recette, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted()
	if sortField == "note_moyenne" {
		sort.SliceStable(out, func(i, j int) bool { return out[i].NoteMoyenne > out[j].NoteMoyenne })
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecettes) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Recette, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Recette{}
	for _, id := range ids {
		if r, ok := f.recettes[id]; ok {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRecettes) FindByCreateur(_ context.Context, userID primitive.ObjectID) ([]models.Recette, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Recette{}
	for _, r := range f.sorted() {
		if r.Createur == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecettes) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Recette, error) {
	f.mu.Lock()
	r, ok := f.recettes[id]
	if ok {
		if titre, ok := fields["titre"].(string); ok {
			r.Titre = titre
		}
		if image, ok := fields["image"].(string); ok {
			r.Image = image
		}
		if portions, ok := fields["portions"].(int); ok {
			r.Portions = portions
		}
		r.Version++
	}
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return f.FindByID(context.Background(), id)
}

func (f *fakeRecettes) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.recettes[id]
	delete(f.recettes, id)
	return ok, nil
}

func (f *fakeRecettes) Noter(_ context.Context, id, userID primitive.ObjectID, valeur int) (*models.Recette, error) {
	f.mu.Lock()
	if f.conflitNote {
		f.mu.Unlock()
		return nil, database.ErrConflitNote
	}
	r, ok := f.recettes[id]
	if ok {
		r.AjouterNote(userID, valeur)
		r.Version++
	}
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return f.FindByID(context.Background(), id)
}

// fakeCommentaires est un CommentaireStore en mémoire
type fakeCommentaires struct {
	mu           sync.Mutex
	commentaires map[primitive.ObjectID]*models.Commentaire
}

func newFakeCommentaires() *fakeCommentaires {
	return &fakeCommentaires{commentaires: map[primitive.ObjectID]*models.Commentaire{}}
}

func (f *fakeCommentaires) Create(_ context.Context, c *models.Commentaire) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.Texte = strings.TrimSpace(c.Texte)
	c.DateCreation = time.Now()
	copie := *c
	f.commentaires[c.ID] = &copie
	return nil
}

func (f *fakeCommentaires) FindByID(_ context.Context, id primitive.ObjectID) (*models.Commentaire, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.commentaires[id]; ok {
		copie := *c
		return &copie, nil
	}
	return nil, nil
}

func (f *fakeCommentaires) FindByRecette(_ context.Context, recetteID primitive.ObjectID) ([]models.Commentaire, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Commentaire{}
	for _, c := range f.commentaires {
		if c.Recette == recetteID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreation.After(out[j].DateCreation) })
	return out, nil
}

func (f *fakeCommentaires) UpdateTexte(_ context.Context, id primitive.ObjectID, texte string) (*models.Commentaire, error) {
	f.mu.Lock()
	c, ok := f.commentaires[id]
	if ok {
		c.Texte = strings.TrimSpace(texte)
	}
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return f.FindByID(context.Background(), id)
}

func (f *fakeCommentaires) Delete(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.commentaires[id]
	delete(f.commentaires, id)
	return ok, nil
}

func (f *fakeCommentaires) DeleteByRecettes(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for cid, c := range f.commentaires {
		for _, id := range ids {
			if c.Recette == id {
				delete(f.commentaires, cid)
				n++
			}
		}
	}
	return n, nil
}

// fakeNotifier enregistre les notifications demandées
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) NouveauCommentaire(recette *models.Recette, acteur *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "commentaire:"+recette.ID.Hex())
}

func (f *fakeNotifier) NouvelleNote(recette *models.Recette, acteur *models.User, valeur int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, fmt.Sprintf("note:%s:%d", recette.ID.Hex(), valeur))
}

// fakeHub enregistre les événements diffusés
type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeHub) BroadcastToRecette(recetteID, eventType string, data interface{}, excludeUserID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType+":"+recetteID)
}

// fakeUploader accepte tout fichier du champ demandé
type fakeUploader struct{}

func (fakeUploader) ParseForm(_ http.ResponseWriter, r *http.Request) error {
	return r.ParseMultipartForm(1 << 20)
}

func (fakeUploader) SaveFromRequest(r *http.Request, field string) (string, error) {
	_, header, err := r.FormFile(field)
	if err != nil {
		return "", nil
	}
	return field + "-test-" + header.Filename, nil
}

// testEnv regroupe les fakes et les handlers branchés dessus
type testEnv struct {
	users        *fakeUsers
	recettes     *fakeRecettes
	commentaires *fakeCommentaires
	notifier     *fakeNotifier
	hub          *fakeHub

	auth        *AuthHandler
	recette     *RecetteHandler
	commentaire *CommentaireHandler
	user        *UserHandler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:        newFakeUsers(),
		recettes:     newFakeRecettes(),
		commentaires: newFakeCommentaires(),
		notifier:     &fakeNotifier{},
		hub:          &fakeHub{},
	}
	env.auth = NewAuthHandler(env.users, testSecret, time.Hour)
	env.recette = NewRecetteHandler(env.recettes, env.users, env.commentaires, fakeUploader{}, env.notifier, env.hub)
	env.commentaire = NewCommentaireHandler(env.commentaires, env.recettes, env.users, env.notifier, env.hub)
	env.user = NewUserHandler(env.users, env.recettes, nil, fakeUploader{})
	return env
}

// call exécute le handler avec les vars d'URL et l'utilisateur donnés
func call(handler http.HandlerFunc, method, target string, body interface{}, vars map[string]string, user *models.User) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body JSON invalide: %v (%s)", err, rr.Body.String())
	}
	return body
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, attendu %d (body: %s)", rr.Code, want, rr.Body.String())
	}
}
