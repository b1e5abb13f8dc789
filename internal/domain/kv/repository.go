package kv

import (
	"context"
	"errors"
)

const (
	KeyPredictorMatchIDs = "predictorMatchIds"
	KeyPreferences       = "preferences"
	KeyUserDeviceInfo    = "userDeviceInfo"

	predictorMatchKeyPrefix = "predictorMatch-"
)

var ErrStore = errors.New("kv store failure")

// Store is an opaque persistent key-value store. Values are JSON documents.
// Get reports false when the key is absent.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

func PredictorMatchKey(id string) string {
	return predictorMatchKeyPrefix + id
}
