package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
)

// SASValidity is how long an issued access URL stays valid.
const SASValidity = time.Hour

const (
	sasPermissions = "rcw" // read, create, write
	sasResource    = "b"   // blob
	sasProtocol    = "https"
	sasTimeLayout  = "2006-01-02T15:04:05Z"
)

// SASConfig holds the storage account identity used to sign access URLs.
type SASConfig struct {
	Account   string
	Key       string // base64 account key
	Container string
	Version   string
	Endpoint  string // account URL, e.g. https://{account}.blob.core.windows.net
}

// SASSigner issues service SAS URLs for single blobs without calling the storage service.
type SASSigner struct {
	cfg SASConfig
	now func() time.Time
}

// NewSASSigner creates a signer. now may be nil (time.Now).
func NewSASSigner(cfg SASConfig, now func() time.Time) *SASSigner {
	if now == nil {
		now = time.Now
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.Account)
	}
	return &SASSigner{cfg: cfg, now: now}
}

// Issue returns a URL granting read/create/write on objectName for SASValidity from now.
func (s *SASSigner) Issue(objectName string) (models.StorageObjectRef, error) {
	start := s.now().UTC().Truncate(time.Second)
	expiry := start.Add(SASValidity)
	startStr := start.Format(sasTimeLayout)
	expiryStr := expiry.Format(sasTimeLayout)

	sig, err := s.sign(s.stringToSign(objectName, startStr, expiryStr))
	if err != nil {
		return models.StorageObjectRef{}, err
	}

	token := strings.Join([]string{
		"sv=" + s.cfg.Version,
		"st=" + url.QueryEscape(startStr),
		"se=" + url.QueryEscape(expiryStr),
		"sr=" + sasResource,
		"sp=" + sasPermissions,
		"spr=" + sasProtocol,
		"sig=" + url.QueryEscape(sig),
	}, "&")

	blobURL := fmt.Sprintf("%s/%s/%s", s.cfg.Endpoint, s.cfg.Container, url.PathEscape(objectName))
	return models.StorageObjectRef{
		ObjectName: objectName,
		AccessURL:  blobURL + "?" + token,
		Expiry:     expiry,
	}, nil
}

// stringToSign builds the canonical service SAS string. Field order and the
// empty optional fields are part of the signature and must not change.
func (s *SASSigner) stringToSign(objectName, start, expiry string) string {
	return strings.Join([]string{
		sasPermissions,
		start,
		expiry,
		fmt.Sprintf("/blob/%s/%s/%s", s.cfg.Account, s.cfg.Container, objectName),
		"", // signed identifier
		"", // signed IP
		sasProtocol,
		s.cfg.Version,
		sasResource,
		"", // snapshot time
		"", // rscc
		"", // rscd
		"", // rsce
		"", // rscl
		"", // rsct
	}, "\n")
}

func (s *SASSigner) sign(stringToSign string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(s.cfg.Key)
	if err != nil {
		return "", fmt.Errorf("decode storage key: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
