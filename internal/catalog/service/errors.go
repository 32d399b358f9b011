package service

import (
	"context"
	"errors"
	"fmt"

	dErrors "rhymcaffer/pkg/domain-errors"
	"rhymcaffer/pkg/platform/sentinel"
)

const (
	entityArtist = "Artist"
	entityAlbum  = "Album"
	entityTrack  = "Track"
)

// translate maps store errors onto the domain taxonomy. Domain errors pass through.
func translate(err error, entity, msg string) error {
	var de *dErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, entity+" not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// requireAll fails with NOT_FOUND naming every id that does not resolve.
func requireAll(ctx context.Context, missing func(context.Context, []int64) ([]int64, error), ids []int64, entity string) error {
	if len(ids) == 0 {
		return nil
	}
	absent, err := missing(ctx, ids)
	if err != nil {
		return translate(err, entity, "failed to resolve ids")
	}
	if len(absent) > 0 {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("%s not found: %v", entity, absent))
	}
	return nil
}
