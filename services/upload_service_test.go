package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"monpetitchef-backend/constants"
	"monpetitchef-backend/utils"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("data", `{"titre":"Tarte"}`); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/recettes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestUploadService(t *testing.T, maxSize int64) *UploadService {
	t.Helper()
	svc, err := NewUploadService(filepath.Join(t.TempDir(), "uploads"), maxSize)
	if err != nil {
		t.Fatalf("NewUploadService() = %v", err)
	}
	return svc
}

func assertBadRequest(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("erreur = %v, attendu une AppError", err)
	}
	if appErr.Status != http.StatusBadRequest || appErr.Message != message {
		t.Errorf("erreur = %d %q, attendu 400 %q", appErr.Status, appErr.Message, message)
	}
}

func TestSaveFromRequest(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)
	req := multipartRequest(t, "image", "Tarte.PNG", pngBytes(t, 40, 20))

	if err := svc.ParseForm(httptest.NewRecorder(), req); err != nil {
		t.Fatalf("ParseForm() = %v", err)
	}
	if got := req.FormValue("data"); got != `{"titre":"Tarte"}` {
		t.Errorf("champ data = %q", got)
	}

	name, err := svc.SaveFromRequest(req, "image")
	if err != nil {
		t.Fatalf("SaveFromRequest() = %v", err)
	}
	if !strings.HasPrefix(name, "image-") || !strings.HasSuffix(name, ".png") {
		t.Errorf("nom = %q, attendu image-<uuid>.png", name)
	}
	if _, err := os.Stat(filepath.Join(svc.Dir(), name)); err != nil {
		t.Errorf("fichier non écrit: %v", err)
	}
}

func TestSaveFromRequestChampAbsent(t *testing.T) {
	svc := newTestUploadService(t, 1024*1024)
	req := multipartRequest(t, "autre", "a.png", pngBytes(t, 2, 2))
	if err := svc.ParseForm(httptest.NewRecorder(), req); err != nil {
		t.Fatalf("ParseForm() = %v", err)
	}

	name, err := svc.SaveFromRequest(req, "image")
	if err != nil || name != "" {
		t.Errorf("SaveFromRequest() = %q, %v, attendu \"\", nil", name, err)
	}
}

func TestSaveRedimensionne(t *testing.T) {
	svc := newTestUploadService(t, 5*1024*1024)

	name, err := svc.Save("avatar", "grande.png", bytes.NewReader(pngBytes(t, 1600, 400)))
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}

	f, err := os.Open(filepath.Join(svc.Dir(), name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if format != "png" || cfg.Width != MaxImageWidth || cfg.Height != 300 {
		t.Errorf("image = %s %dx%d, attendu png %dx300", format, cfg.Width, cfg.Height, MaxImageWidth)
	}
}

func TestSaveRefus(t *testing.T) {
	svc := newTestUploadService(t, 64)

	t.Run("pas une image", func(t *testing.T) {
		_, err := svc.Save("image", "notes.txt", strings.NewReader("bonjour"))
		assertBadRequest(t, err, constants.ErrNotAnImage)
	})

	t.Run("en-tête GIF sans image", func(t *testing.T) {
		_, err := svc.Save("image", "page.html", strings.NewReader("GIF89a<html></html>"))
		assertBadRequest(t, err, constants.ErrNotAnImage)
	})

	t.Run("trop volumineuse", func(t *testing.T) {
		contenu := append(pngBytes(t, 2, 2), make([]byte, 128)...)
		_, err := svc.Save("image", "grande.png", bytes.NewReader(contenu))
		assertBadRequest(t, err, constants.ErrFileTooLarge)
	})
}

func TestSaveExtensionDuFormatDecode(t *testing.T) {
	svc := newTestUploadService(t, 1024*1024)

	var buf bytes.Buffer
	if err := gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.White, color.Black}), nil); err != nil {
		t.Fatalf("gif.Encode: %v", err)
	}
	buf.WriteString("<html><script>alert(1)</script></html>")

	tests := []struct {
		name     string
		filename string
		content  []byte
		wantExt  string
	}{
		{"gif nommé html", "page.html", buf.Bytes(), ".gif"},
		{"png sans extension", "photo", pngBytes(t, 4, 4), ".png"},
		{"png nommé svg", "dessin.svg", pngBytes(t, 4, 4), ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := svc.Save("image", tt.filename, bytes.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Save() = %v", err)
			}
			if filepath.Ext(name) != tt.wantExt {
				t.Errorf("nom = %q, attendu l'extension %s", name, tt.wantExt)
			}
		})
	}
}
