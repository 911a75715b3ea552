// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 FitSync Authors

// Package adapter provides transport-layer abstractions for communicating
// with the fitsync backend.
//
// The primary abstraction is [RemoteAdapter], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"time"

	"github.com/fitsync/fitsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter defines transport-agnostic communication with the fitsync
// backend. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel
// values defined in this package.
type RemoteAdapter interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// List fetches the caller's entities from the server. When since is
	// non-nil only entities updated after that instant are returned, which
	// keeps routine pulls small. Returned entities carry no sync status.
	List(ctx context.Context, since *time.Time) ([]models.Entity, error)

	// Create pushes a new entity and returns the server's copy, including
	// the server-assigned id. The id sent in the request is ignored by the
	// server when it carries the local prefix.
	Create(ctx context.Context, entity models.Entity) (models.Entity, error)

	// Update replaces the server copy of an existing entity and returns the
	// stored result. Returns [ErrNotFound] (wrapped) if the server has no
	// such entity.
	Update(ctx context.Context, entity models.Entity) (models.Entity, error)

	// Delete removes an entity on the server. Returns [ErrNotFound]
	// (wrapped) if the server has no such entity.
	Delete(ctx context.Context, id string) error

	// CreateTemplate pushes a new workout template and returns the server's
	// copy, including the server-assigned id.
	CreateTemplate(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error)

	// UpdateTemplate replaces the server copy of an existing template.
	UpdateTemplate(ctx context.Context, tpl models.WorkoutTemplate) (models.WorkoutTemplate, error)

	// DeleteTemplate removes a template on the server.
	DeleteTemplate(ctx context.Context, id string) error

	// Ping probes backend reachability with a lightweight request. A nil
	// return means the device is online from the sync engine's point of
	// view.
	Ping(ctx context.Context) error
}
