package permissions

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route pattern. Skip marks a public route; an empty
// list admits any authenticated caller.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
	once  sync.Once
}

// FindPermissions looks up a chi route pattern such as /v1/bookings/{id}. The second result is
// false for routes permissions.json does not list.
func (r *PermissionData) FindPermissions(path, method string) (Permission, bool) {
	r.once.Do(func() {
		r.index = make(map[string]Permission, len(r.Endpoints))
		for _, endpoint := range r.Endpoints {
			r.index[endpoint.Method+" "+endpoint.Path] = endpoint
		}
	})

	permission, ok := r.index[method+" "+path]

	return permission, ok
}

func Get() *PermissionData {
	var permissions PermissionData

	err := json.Unmarshal(permissionsData, &permissions)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return &permissions
}
