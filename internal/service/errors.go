package service

import "errors"

var (
	ErrOffline          = errors.New("device is offline")
	ErrNoUser           = errors.New("no authenticated user")
	ErrUnknownStrategy  = errors.New("unknown conflict strategy")
	ErrManualResolution = errors.New("conflict requires manual resolution")
)
