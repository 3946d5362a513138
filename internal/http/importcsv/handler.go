package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harvesttrail/harvesttrail/internal/batch"
	"github.com/harvesttrail/harvesttrail/internal/importer"
)

type Handler struct {
	importSvc *importer.Service
	wf        *batch.Workflow
}

func NewHandler(importSvc *importer.Service, wf *batch.Workflow) *Handler {
	return &Handler{importSvc: importSvc, wf: wf}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importedBatch struct {
	LotNumber string `json:"lotNumber"`
	Crop      string `json:"crop"`
	Weight    string `json:"weight"`
}

type importSuccessResponse struct {
	Registered int             `json:"registered"`
	Batches    []importedBatch `json:"batches"`
}

// importCSV registers every row of the uploaded spreadsheet through the
// workflow engine, so imported lots get the same audit trail and
// notifications as single uploads. The file is parsed fully before any row
// is registered; a bad row rejects the whole upload.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := importSuccessResponse{Batches: make([]importedBatch, 0, len(params))}

	for _, p := range params {
		b, err := h.wf.UploadDirect(r.Context(), p)
		if err != nil {
			var vErr *batch.ValidationError
			if errors.As(err, &vErr) {
				http.Error(w, vErr.Error(), http.StatusBadRequest)
				return
			}

			http.Error(w, "internal error", http.StatusInternalServerError)

			return
		}

		lot := ""
		if b.LotNumber != nil {
			lot = *b.LotNumber
		}

		resp.Registered++
		resp.Batches = append(resp.Batches, importedBatch{
			LotNumber: lot,
			Crop:      b.Crop,
			Weight:    b.Weight,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
