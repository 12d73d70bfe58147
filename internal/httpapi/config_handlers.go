package httpapi

import (
	"net/http"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"jobscout-engine/internal/config"
)

// ConfigHandler exposes the running configuration read-only. Changing it
// means editing the file and restarting.
type ConfigHandler struct {
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	b, err := yaml.Marshal(&cur)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(b)
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	path := h.UserCfgPath
	if path != "" {
		path, _ = filepath.Abs(path)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"path": path})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	cur := h.CfgVal.Load().(config.Config)
	_, vr := config.NormalizeAndValidate(cur)
	WriteJSON(w, http.StatusOK, vr)
}
