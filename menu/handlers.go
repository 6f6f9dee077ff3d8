package menu

import (
	"context"
	"net/http"
	"strings"
	"time"

	"servecart/models"
	"servecart/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 10 << 20

type Publisher interface {
	Emit(ctx context.Context, ev models.Event)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// Handler serves the catalog. Reads go through Source, writes through Repo.
type Handler struct {
	Source      Source
	Repo        Repository
	Cache       Invalidator
	Events      Publisher
	Placeholder func(ctx context.Context) string
	PicDir      string
}

type ListResponse struct {
	Categories []string          `json:"categories"`
	Items      []models.MenuItem `json:"items"`
}

func (h *Handler) withPlaceholder(ctx context.Context, items []models.MenuItem) {
	if h.Placeholder == nil {
		return
	}
	ph := h.Placeholder(ctx)
	if ph == "" {
		return
	}
	for i := range items {
		if items[i].Image == "" {
			items[i].Image = ph
		}
	}
}

// ListItems returns the catalog, optionally narrowed with ?category=.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.Source.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := ListResponse{
		Categories: Categories(items),
		Items:      InCategory(items, strings.TrimSpace(r.URL.Query().Get("category"))),
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	h.withPlaceholder(ctx, resp.Items)
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.Source.Get(ctx, ps.ByName("itemid"))
	if err != nil {
		writeError(w, err)
		return
	}
	items := []models.MenuItem{item}
	h.withPlaceholder(ctx, items)
	utils.RespondWithJSON(w, http.StatusOK, items[0])
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var item models.MenuItem
	if err := utils.DecodeJSON(w, r, &item); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = utils.GetUUID()
	}
	if err := item.Validate(); err != nil {
		writeError(w, err)
		return
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	ctx := r.Context()
	if err := h.Repo.Create(ctx, item); err != nil {
		writeError(w, err)
		return
	}
	h.changed(ctx, "menu-created", http.MethodPost, item.ID)
	utils.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateItem replaces an item. Creation time and an omitted image are kept.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var item models.MenuItem
	if err := utils.DecodeJSON(w, r, &item); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	item.ID = ps.ByName("itemid")
	if err := item.Validate(); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	existing, err := h.Repo.Get(ctx, item.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	if item.Image == "" {
		item.Image, item.Thumbnail = existing.Image, existing.Thumbnail
	}

	if err := h.Repo.Update(ctx, item); err != nil {
		writeError(w, err)
		return
	}
	h.changed(ctx, "menu-edited", http.MethodPut, item.ID)
	utils.RespondWithJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("itemid")
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.changed(r.Context(), "menu-deleted", http.MethodDelete, id)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "id": id})
}

// UploadImage stores the multipart "image" field as the item picture.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("itemid")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing image field")
		return
	}
	defer file.Close()
	if !utils.IsSupportedImage(header) {
		utils.RespondWithError(w, http.StatusUnsupportedMediaType, "Unsupported image type")
		return
	}

	ctx := r.Context()
	if _, err := h.Repo.Get(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	image, thumb, err := SaveImage(file, h.PicDir, id)
	if err != nil {
		log.Warn().Err(err).Str("item", id).Msg("image upload rejected")
		utils.RespondWithError(w, http.StatusBadRequest, "Could not read image")
		return
	}
	if err := h.Repo.SetImage(ctx, id, image, thumb); err != nil {
		writeError(w, err)
		return
	}
	h.changed(ctx, "menu-image-uploaded", http.MethodPost, id)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"image": image, "thumbnail": thumb})
}

func (h *Handler) changed(ctx context.Context, name, method, id string) {
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx, id); err != nil {
			log.Warn().Err(err).Str("item", id).Msg("menu cache not invalidated")
		}
	}
	if h.Events != nil {
		h.Events.Emit(ctx, models.Event{
			Name:       name,
			EntityType: "menu",
			Method:     method,
			EntityID:   id,
			Timestamp:  time.Now().Unix(),
		})
	}
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidMenuItem):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateItem):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("menu request failed")
		utils.RespondWithError(w, status, "Internal server error")
		return
	}
	utils.RespondWithError(w, status, err.Error())
}
