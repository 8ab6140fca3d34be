package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/datatypes"

	"smartentrance/internal/apiclient"
	"smartentrance/internal/models"
	"smartentrance/internal/session"
)

// ErrNoCredentials means a background discard has nothing to authenticate with.
var ErrNoCredentials = errors.New("no credentials to discard upload with")

// Discarder removes the stored file of a ledger record outside the request that
// uploaded it.
type Discarder interface {
	Discard(ctx context.Context, rec *models.UploadRecord) error
}

// StorageDiscarder discards through an Uploader that carries its own credentials,
// such as S3.
type StorageDiscarder struct {
	Uploader Uploader
}

func (d StorageDiscarder) Discard(ctx context.Context, rec *models.UploadRecord) error {
	return d.Uploader.Discard(ctx, rec.URL)
}

// BackendDiscarder deletes files through the backend file endpoint as the user who
// uploaded them, replaying the cookies recorded on the ledger entry. Requests are
// signed as well when the client has a signing secret.
type BackendDiscarder struct {
	client *apiclient.Client
}

func NewBackendDiscarder(client *apiclient.Client) *BackendDiscarder {
	return &BackendDiscarder{client: client}
}

func (d *BackendDiscarder) Discard(ctx context.Context, rec *models.UploadRecord) error {
	cookies, err := OwnerCookies(rec)
	if err != nil {
		return err
	}
	if len(cookies) == 0 && !d.client.Signed() {
		return fmt.Errorf("discard %s: %w", rec.ID, ErrNoCredentials)
	}

	jar := session.NewJar(d.client.BaseURL(), cookies)
	return NewFileService(d.client.WithJar(jar)).Discard(ctx, rec.URL)
}

// cookieSource is a client bound to a session cookie jar.
type cookieSource interface {
	Cookies() []*http.Cookie
}

// recordOwner stores the backend cookies of client on rec. Clients without a jar
// leave rec unchanged.
func recordOwner(rec *models.UploadRecord, client Requester) {
	src, ok := client.(cookieSource)
	if !ok {
		return
	}
	var cookies []session.Cookie
	for _, c := range src.Cookies() {
		cookies = append(cookies, session.Cookie{Name: c.Name, Value: c.Value})
	}
	if len(cookies) == 0 {
		return
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return
	}
	rec.Credentials = datatypes.JSON(data)
}

// OwnerCookies returns the uploader's backend cookies recorded on rec.
func OwnerCookies(rec *models.UploadRecord) ([]session.Cookie, error) {
	if len(rec.Credentials) == 0 {
		return nil, nil
	}
	var cookies []session.Cookie
	if err := json.Unmarshal(rec.Credentials, &cookies); err != nil {
		return nil, fmt.Errorf("decode credentials of %s: %w", rec.ID, err)
	}
	return cookies, nil
}
