package handler

import (
	"errors"
	"net/http"

	"github.com/tsukuda/clubpass/internal/imagestore"
)

// uploadMemoryLimit bounds multipart parsing; the file itself is capped at
// the image-store limit.
const uploadMemoryLimit = 8 << 20

// Upload receives an admin-form image, validates it, and stores it in the
// requested bucket. Responds with JSON so the form script can fill the URL
// field.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.images.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "画像アップロードは現在利用できません"})
		return
	}

	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ファイルの受信に失敗しました"})
		return
	}

	bucket := imagestore.Bucket(r.FormValue("bucket"))
	if !bucket.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "不正なアップロード先です"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "画像ファイルを選択してください"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := imagestore.ValidateImage(contentType, header.Size); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	url, err := h.images.Upload(r.Context(), bucket, header.Filename, contentType, file, header.Size)
	if err != nil {
		var verr *imagestore.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message})
			return
		}
		h.logger.Error("upload image", "bucket", bucket, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "アップロードに失敗しました。もう一度お試しください。"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
