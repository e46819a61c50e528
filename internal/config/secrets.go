// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Secrets is the credential bundle mounted by the hosting platform as a JSON
// file. Everything that identifies or authenticates against an external
// collaborator lives here; non-secret tunables live in [Config].
type Secrets struct {
	// SFTPHost is the export file server address in "host:port" form.
	SFTPHost string `json:"sftp_host"`

	// SFTPUser and SFTPPassword authenticate the SFTP session.
	SFTPUser     string `json:"sftp_user"`
	SFTPPassword string `json:"sftp_password"`

	// SFTPFolder is the remote directory the export files are deposited in.
	SFTPFolder string `json:"sftp_folder"`

	// KnownHostKey pins the file server's identity. Either an OpenSSH
	// authorized-key line ("ssh-ed25519 AAAA...") or a SHA256 fingerprint
	// ("SHA256:..."). A session is never established against a host whose
	// presented key does not match.
	KnownHostKey string `json:"known_host_key"`

	// PortalURL is the root URL of the hosting organization's portal, used
	// for token generation and item access.
	PortalURL string `json:"portal_url"`

	// PortalUser and PortalPassword authenticate against the portal.
	PortalUser     string `json:"portal_user"`
	PortalPassword string `json:"portal_password"`

	// FeatureLayerURL is the REST URL of the hosted feature layer
	// (".../FeatureServer/0").
	FeatureLayerURL string `json:"feature_layer_url"`

	// WebmapItemID identifies the webmap item whose renderer is rewritten
	// after a sync.
	WebmapItemID string `json:"webmap_item_id"`

	// LayerName is the operational layer title inside the webmap whose
	// renderer carries the class breaks.
	LayerName string `json:"layer_name"`

	// NotifierURL is the optional webhook that receives the run summary.
	// Empty means summaries are only logged.
	NotifierURL string `json:"notifier_url,omitempty"`
}

// GetSecrets reads and parses the mounted credential bundle at path and
// validates that every required field is present.
func GetSecrets(path string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading secrets file: %w", err)
	}

	var s Secrets
	if err = json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("error decoding secrets file: %w", err)
	}

	if err = s.validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Secrets) validate() error {
	required := []string{
		s.SFTPHost,
		s.SFTPUser,
		s.SFTPPassword,
		s.SFTPFolder,
		s.KnownHostKey,
		s.PortalURL,
		s.PortalUser,
		s.PortalPassword,
		s.FeatureLayerURL,
		s.WebmapItemID,
		s.LayerName,
	}
	for _, v := range required {
		if v == "" {
			return ErrIncompleteSecrets
		}
	}

	return nil
}
