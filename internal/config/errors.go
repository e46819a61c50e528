package config

import "errors"

var (
	ErrInvalidFetchConfigs     = errors.New("invalid fetch configs")
	ErrInvalidSyncConfigs      = errors.New("invalid sync configs")
	ErrInvalidSymbologyConfigs = errors.New("invalid symbology configs")
	ErrInvalidArchiveConfigs   = errors.New("invalid archive configs")
	ErrInvalidAdapterConfigs   = errors.New("invalid adapter configs")
	ErrNoSecretsPath           = errors.New("no secrets path configured")
	ErrIncompleteSecrets       = errors.New("incomplete secrets bundle")
)
