package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMime = "application/vnd.google-apps.folder"

// GDrive is the Google Drive v3 Backend.
type GDrive struct {
	svc *drivev3.Service
}

// NewGDrive builds the Drive service on an already authorized client.
func NewGDrive(ctx context.Context, client *http.Client) (*GDrive, error) {
	svc, err := drivev3.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &GDrive{svc: svc}, nil
}

// quote escapes a value for a Drive query string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, `'`, `\'`) + "'"
}

func (g *GDrive) FindFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	q := fmt.Sprintf("name = %s and %s in parents and mimeType = '%s' and trashed = false",
		quote(name), quote(parentID), folderMime)
	res, err := g.svc.Files.List().
		Q(q).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, err
	}
	if len(res.Files) == 0 {
		return "", false, nil
	}
	return res.Files[0].Id, true, nil
}

func (g *GDrive) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	f, err := g.svc.Files.Create(&drivev3.File{
		Name:     name,
		MimeType: folderMime,
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (g *GDrive) ListImages(ctx context.Context, folderID string) ([]File, error) {
	q := fmt.Sprintf("%s in parents and mimeType contains 'image/' and trashed = false", quote(folderID))
	var out []File
	err := g.svc.Files.List().
		Q(q).
		Spaces("drive").
		OrderBy("name").
		Fields("nextPageToken, files(id, name, mimeType, createdTime, webViewLink)").
		PageSize(1000).
		Pages(ctx, func(page *drivev3.FileList) error {
			for _, f := range page.Files {
				out = append(out, toFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GDrive) Upload(ctx context.Context, name, folderID, mimeType string, content []byte) (File, error) {
	f, err := g.svc.Files.Create(&drivev3.File{
		Name:    name,
		Parents: []string{folderID},
	}).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Fields("id, name, mimeType, createdTime, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return File{}, err
	}
	return toFile(f), nil
}

func (g *GDrive) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := g.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func toFile(f *drivev3.File) File {
	out := File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, ViewLink: f.WebViewLink}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		out.CreatedTime = t
	}
	return out
}
