package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/config"
	"github.com/google/uuid"
)

func TestCheckImage(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantExt     string
		wantErr     error
	}{
		{"jpeg", "image/jpeg", 1024, ".jpg", nil},
		{"png with params", "image/PNG; charset=binary", 2048, ".png", nil},
		{"webp at limit", "image/webp", MaxImageBytes, ".webp", nil},
		{"pdf", "application/pdf", 100, "", ErrUnsupportedType},
		{"too large", "image/jpeg", MaxImageBytes + 1, "", ErrTooLarge},
		{"empty", "image/png", 0, "", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := CheckImage(tt.contentType, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if ext != tt.wantExt {
				t.Errorf("ext = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestImageKey(t *testing.T) {
	owner := uuid.New()
	key := ImageKey("avatars", owner, ".png")
	prefix := "avatars/" + owner.String() + "/"
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, ".png") {
		t.Errorf("key = %q, want %s<uuid>.png", key, prefix)
	}
	if ImageKey("avatars", owner, ".png") == key {
		t.Error("keys should be unique per upload")
	}
}

func TestNewWithoutBucketIsDisabled(t *testing.T) {
	up, err := New(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := up.Upload(context.Background(), "k", "image/png", strings.NewReader("x"), 1); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("Upload err = %v, want ErrStorageDisabled", err)
	}
}

func TestKeyFromURL(t *testing.T) {
	owner := uuid.New()
	key := "avatars/" + owner.String() + "/abc.png"
	tests := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{"bucket url", "https://b.s3.eu-west-1.amazonaws.com/" + key, key, true},
		{"cdn url", "https://cdn.example.com/media/" + key, key, true},
		{"empty", "", "", false},
		{"other owner", "https://cdn.example.com/avatars/" + uuid.NewString() + "/abc.png", "", false},
		{"other prefix", "https://cdn.example.com/customers/" + owner.String() + "/abc.png", "", false},
		{"external", "https://gravatar.com/avatar/abc", "", false},
		{"query string", "https://cdn.example.com/" + key + "?v=2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := KeyFromURL(tt.url, "avatars", owner)
			if got != tt.want || ok != tt.ok {
				t.Errorf("KeyFromURL = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

type memStore struct {
	objects map[string]bool
	deleted []string
}

func (m *memStore) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	m.objects[key] = true
	return "https://cdn.example.com/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func imageHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("\x89PNG fake image"))
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	return form.File["avatar"][0]
}

func TestReplaceImageRemovesPrevious(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	store := &memStore{objects: map[string]bool{}}

	first, err := ReplaceImage(ctx, store, imageHeader(t), "avatars", owner, "")
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Errorf("nothing to delete on first upload, deleted %v", store.deleted)
	}

	second, err := ReplaceImage(ctx, store, imageHeader(t), "avatars", owner, first)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if second == first {
		t.Fatal("replacement should get a new key")
	}
	if len(store.objects) != 1 || len(store.deleted) != 1 {
		t.Errorf("objects = %v, deleted = %v", store.objects, store.deleted)
	}

	// Foreign URLs are never deleted.
	if _, err := ReplaceImage(ctx, store, imageHeader(t), "avatars", owner, "https://gravatar.com/avatar/x"); err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 1 {
		t.Errorf("foreign url deleted: %v", store.deleted)
	}
}
