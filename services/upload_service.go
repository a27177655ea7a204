package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/utils"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxImageWidth est la largeur au-delà de laquelle une image est redimensionnée
const MaxImageWidth = 1200

// formOverhead laisse de la place aux autres champs du formulaire multipart
const formOverhead = 1 << 20

// UploadService enregistre les images envoyées dans UPLOAD_DIR
type UploadService struct {
	dir     string
	maxSize int64
}

// NewUploadService crée le dossier d'upload s'il n'existe pas
func NewUploadService(dir string, maxSize int64) (*UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("impossible de créer le dossier d'upload %s: %w", dir, err)
	}
	return &UploadService{dir: dir, maxSize: maxSize}, nil
}

// Dir retourne le dossier servi sous /uploads/
func (s *UploadService) Dir() string {
	return s.dir
}

// ParseForm lit le formulaire multipart en limitant la taille du body
func (s *UploadService) ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxSize+formOverhead)
	if err := r.ParseMultipartForm(s.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return utils.ErrBadRequest(constants.ErrFileTooLarge)
		}
		return utils.ErrBadRequest(constants.ErrUploadFailure)
	}
	return nil
}

// SaveFromRequest enregistre l'image du champ field et retourne son nom de fichier.
// Retourne "" sans erreur si le champ est absent.
func (s *UploadService) SaveFromRequest(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", utils.ErrBadRequest(constants.ErrUploadFailure)
	}
	defer file.Close()

	if header.Size > s.maxSize {
		return "", utils.ErrBadRequest(constants.ErrFileTooLarge)
	}

	return s.Save(field, header.Filename, file)
}

// imageExtensions associe les formats décodés à l'extension du fichier écrit
var imageExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// Save valide puis écrit l'image, redimensionnée si elle dépasse MaxImageWidth.
// L'extension dépend du format décodé, jamais du nom envoyé.
func (s *UploadService) Save(field, originalName string, src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return "", utils.ErrInternal(constants.ErrUploadFailure, err)
	}
	if int64(len(data)) > s.maxSize {
		return "", utils.ErrBadRequest(constants.ErrFileTooLarge)
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", utils.ErrBadRequest(constants.ErrNotAnImage)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("⚠️ Image illisible %q: %v", originalName, err)
		return "", utils.ErrBadRequest(constants.ErrNotAnImage)
	}
	ext, ok := imageExtensions[format]
	if !ok {
		return "", utils.ErrBadRequest(constants.ErrNotAnImage)
	}

	if img.Bounds().Dx() > MaxImageWidth {
		resized, newExt, err := resize(img, format)
		if err != nil {
			return "", utils.ErrInternal(constants.ErrUploadFailure, err)
		}
		data, ext = resized, newExt
	}

	name := fmt.Sprintf("%s-%s%s", field, uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", utils.ErrInternal(constants.ErrUploadFailure, err)
	}

	log.Printf("📷 Image enregistrée: %s (%d octets)", name, len(data))
	return name, nil
}

// resize ramène l'image à MaxImageWidth en gardant les proportions.
// Les PNG restent en PNG, les autres formats sont réencodés en JPEG.
func resize(img image.Image, format string) ([]byte, string, error) {
	bounds := img.Bounds()
	height := bounds.Dy() * MaxImageWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, MaxImageWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", fmt.Errorf("encodage PNG: %w", err)
		}
		return buf.Bytes(), ".png", nil
	}

	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", fmt.Errorf("encodage JPEG: %w", err)
	}
	return buf.Bytes(), ".jpg", nil
}
