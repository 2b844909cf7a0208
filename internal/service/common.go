package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mdsq/internal/cache"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/repository"
)

const (
	serviceCacheTTL  = 5 * time.Minute
	ministryTreeKey  = "ministries:tree"
	ministryCacheTTL = 5 * time.Minute
)

func serviceCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("service:%s", id)
}

// notFoundAs maps gorm.ErrRecordNotFound to the given domain error and
// leaves other errors for FromStorage.
func notFoundAs(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// duplicateAs maps a unique-index violation to the given conflict error.
func duplicateAs(err, domainErr error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainErr
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// invalidateServices drops cached service details. Cache errors never fail a
// committed write.
func invalidateServices(ctx context.Context, c *cache.Client, ids ...uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, serviceCacheKey(id))
	}
	_ = c.Delete(ctx, keys...)
}

func invalidateMinistryTree(ctx context.Context, c *cache.Client) {
	_ = c.Delete(ctx, ministryTreeKey)
}

// memberCacheKeys lists the cached views that embed a member: the details of
// every service it is assigned to and the ministry tree.
func memberCacheKeys(ctx context.Context, store repository.Store, memberID uuid.UUID) ([]string, error) {
	serviceIDs, err := store.Assignments().ServiceIDsByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(serviceIDs)+1)
	for _, id := range serviceIDs {
		keys = append(keys, serviceCacheKey(id))
	}
	return append(keys, ministryTreeKey), nil
}

// storageFailure logs and converts an error returned by a transaction.
func storageFailure(logger *zap.Logger, op string, err error) error {
	converted := apperrors.FromStorage(op, err)
	if apperrors.KindOf(converted) == apperrors.KindStorage {
		logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	}
	return converted
}
