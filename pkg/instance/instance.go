package instance

import (
	"os"

	"github.com/medstore/medstore-backend/pkg/env"
)

const envWorkerID = "MEDSTORE_WORKER_ID"

// GetID identifies this process among replicas. MEDSTORE_WORKER_ID wins,
// then the platform dyno name, then the hostname.
func GetID() string {
	if id := env.First(envWorkerID, "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
