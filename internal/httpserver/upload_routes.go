package httpserver

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rideshare_go/internal/domain"
)

const maxUploadBytes = 10 << 20

// mediaTypes maps accepted file extensions to the message type they carry.
var mediaTypes = map[string]domain.MessageType{
	".jpg":  domain.MessageTypeImage,
	".jpeg": domain.MessageTypeImage,
	".png":  domain.MessageTypeImage,
	".gif":  domain.MessageTypeImage,
	".webp": domain.MessageTypeImage,
	".mp3":  domain.MessageTypeVoice,
	".m4a":  domain.MessageTypeVoice,
	".aac":  domain.MessageTypeVoice,
	".wav":  domain.MessageTypeVoice,
	".ogg":  domain.MessageTypeVoice,
	".webm": domain.MessageTypeVoice,
}

type uploadResponse struct {
	URL         string             `json:"url"`
	Filename    string             `json:"filename"`
	MessageType domain.MessageType `json:"message_type"`
}

// UploadRoutes returns a sub-router mounted at /api/uploads. Uploaded media
// is referenced from image and voice messages by URL.
func UploadRoutes(uploadDir string, log logrus.FieldLogger) chi.Router {
	r := chi.NewRouter()

	// @Summary      Upload message media
	// @Tags         uploads
	// @Security     BearerAuth
	// @Accept       multipart/form-data
	// @Produce      json
	// @Param        file formData file true "Image or voice file"
	// @Success      201  {object}  uploadResponse
	// @Failure      400  {object}  errorResponse
	// @Router       /uploads [post]
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "failed to parse multipart form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "missing file")
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		kind, ok := mediaTypes[ext]
		if !ok {
			writeErrorMessage(w, http.StatusBadRequest, "unsupported file type")
			return
		}

		filename := uuid.NewString() + ext
		out, err := os.Create(filepath.Join(uploadDir, filename))
		if err != nil {
			log.WithError(err).Error("create upload")
			writeErrorMessage(w, http.StatusInternalServerError, "could not create file")
			return
		}
		defer out.Close()

		if _, err := io.Copy(out, file); err != nil {
			log.WithError(err).Error("save upload")
			writeErrorMessage(w, http.StatusInternalServerError, "could not save file")
			return
		}

		writeJSON(w, http.StatusCreated, uploadResponse{
			URL:         "/api/uploads/" + filename,
			Filename:    filename,
			MessageType: kind,
		})
	})

	r.Get("/{filename}", func(w http.ResponseWriter, r *http.Request) {
		filename, err := url.PathUnescape(chi.URLParam(r, "filename"))
		if err != nil || !servableName(filename) {
			writeErrorMessage(w, http.StatusBadRequest, "invalid filename")
			return
		}
		http.ServeFile(w, r, filepath.Join(uploadDir, filename))
	})

	return r
}

// servableName accepts only bare, non-hidden names with a media extension,
// so nothing outside the stored uploads can be read.
func servableName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return false
	}
	_, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}
