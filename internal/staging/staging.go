package staging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"time"

	"resume-extractor/internal/shared/storage/object"
	"resume-extractor/internal/shared/telemetry"
	"resume-extractor/internal/shared/util"
)

const keyPrefix = "staging"

// Release deletes a staged object. It is safe to call more than once.
type Release func()

// Stage writes r to the store under a fresh key scoped to userID and returns the key
// with a Release that removes it. Callers defer Release immediately so the object is
// removed on every exit path.
func Stage(ctx context.Context, store object.ObjectStore, userID, fileName, contentType string, r io.Reader) (string, Release, error) {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", nil, fmt.Errorf("stage %q: %w", fileName, err)
	}
	key := path.Join(keyPrefix, util.HashUserKey(userID), randomID()+"_"+sanitized)

	if _, err := store.SaveWithKey(ctx, key, contentType, r); err != nil {
		// A partial write may still have created the object.
		remove(store, key)
		return "", nil, fmt.Errorf("stage %q: %w", fileName, err)
	}

	released := false
	return key, func() {
		if released {
			return
		}
		released = true
		remove(store, key)
	}, nil
}

func remove(store object.ObjectStore, key string) {
	// Cleanup must run even when the request context is already done.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Delete(ctx, key); err != nil {
		telemetry.Error("staging.release.failed", map[string]any{
			"key": key,
			"err": err.Error(),
		})
	}
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
