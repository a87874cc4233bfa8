// Package drivetools gives the assistant file operations on Google Drive
// and document editing through the Docs API.
package drivetools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"riabuilder/internal/logging"
)

const (
	// DefaultDriveBaseURL is the Drive v3 REST endpoint.
	DefaultDriveBaseURL = "https://www.googleapis.com/drive/v3"

	// DefaultDocsBaseURL is the Docs v1 REST endpoint.
	DefaultDocsBaseURL = "https://docs.googleapis.com/v1"

	folderMimeType = "application/vnd.google-apps.folder"
	docMimeType    = "application/vnd.google-apps.document"

	defaultPageSize = 10
	maxPageSize     = 100
)

// ClientConfig configures the Drive client.
type ClientConfig struct {
	AccessToken  string
	DriveBaseURL string
	DocsBaseURL  string
	Timeout      time.Duration
}

// Client calls the Drive and Docs REST APIs with a bearer token.
type Client struct {
	accessToken  string
	driveBaseURL string
	docsBaseURL  string
	httpClient   *http.Client
}

// NewClient creates a Drive client, filling in endpoint defaults.
func NewClient(cfg ClientConfig) *Client {
	driveBase := strings.TrimSuffix(cfg.DriveBaseURL, "/")
	if driveBase == "" {
		driveBase = DefaultDriveBaseURL
	}
	docsBase := strings.TrimSuffix(cfg.DocsBaseURL, "/")
	if docsBase == "" {
		docsBase = DefaultDocsBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		accessToken:  cfg.AccessToken,
		driveBaseURL: driveBase,
		docsBaseURL:  docsBase,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an access token is set.
func (c *Client) Configured() bool {
	return c.accessToken != ""
}

// File is the subset of Drive file metadata the tools report.
type File struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	MimeType    string   `json:"mimeType"`
	WebViewLink string   `json:"webViewLink,omitempty"`
	Parents     []string `json:"parents,omitempty"`
}

// IsFolder reports whether the file is a Drive folder.
func (f File) IsFolder() bool {
	return f.MimeType == folderMimeType
}

type fileList struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

const fileFields = "files(id, name, mimeType, webViewLink, parents)"

// do issues an authenticated request and decodes the JSON response into
// out (when non-nil).
func (c *Client) do(ctx context.Context, method, rawURL string, body interface{}, out interface{}) error {
	if !c.Configured() {
		return fmt.Errorf("not authenticated with Google: no access token")
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal drive request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create drive request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("drive request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read drive response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("drive API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("drive API error: status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse drive response: %w", err)
		}
	}
	return nil
}

// download issues an authenticated request and returns the raw body.
func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("not authenticated with Google: no access token")
	}
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read drive response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("drive API error: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func clampPageSize(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// ListFiles lists files in a folder ("root" when folderID is empty).
func (c *Client) ListFiles(ctx context.Context, folderID string, pageSize int) ([]File, error) {
	if folderID == "" {
		folderID = "root"
	}
	params := url.Values{}
	params.Set("pageSize", fmt.Sprint(clampPageSize(pageSize)))
	params.Set("fields", "nextPageToken, "+fileFields)
	params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID)))

	var list fileList
	if err := c.do(ctx, "GET", c.driveBaseURL+"/files?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}
	logging.DriveDebug("Listed %d files in folder %s", len(list.Files), folderID)
	return list.Files, nil
}

// SearchFiles finds files whose name contains the query.
func (c *Client) SearchFiles(ctx context.Context, query string, pageSize int) ([]File, error) {
	params := url.Values{}
	params.Set("pageSize", fmt.Sprint(clampPageSize(pageSize)))
	params.Set("fields", "nextPageToken, "+fileFields)
	params.Set("q", fmt.Sprintf("name contains '%s' and trashed = false", escapeQuery(query)))

	var list fileList
	if err := c.do(ctx, "GET", c.driveBaseURL+"/files?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}
	logging.DriveDebug("Search %q matched %d files", query, len(list.Files))
	return list.Files, nil
}

// ListFolders lists folders, optionally under a parent folder.
func (c *Client) ListFolders(ctx context.Context, parentID string, pageSize int) ([]File, error) {
	q := fmt.Sprintf("mimeType = '%s' and trashed = false", folderMimeType)
	if parentID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(parentID))
	}
	params := url.Values{}
	params.Set("pageSize", fmt.Sprint(clampPageSize(pageSize)))
	params.Set("fields", "nextPageToken, "+fileFields)
	params.Set("q", q)

	var list fileList
	if err := c.do(ctx, "GET", c.driveBaseURL+"/files?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Files, nil
}

// GetFile loads one file's metadata.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	params := url.Values{}
	params.Set("fields", "id, name, mimeType, webViewLink, parents")

	var f File
	if err := c.do(ctx, "GET", c.driveBaseURL+"/files/"+url.PathEscape(fileID)+"?"+params.Encode(), nil, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// ReadFile returns a file's text content. Google Docs are exported as
// plain text; other files are downloaded as-is.
func (c *Client) ReadFile(ctx context.Context, fileID string) (File, string, error) {
	f, err := c.GetFile(ctx, fileID)
	if err != nil {
		return File{}, "", err
	}

	base := c.driveBaseURL + "/files/" + url.PathEscape(fileID)
	var body []byte
	if strings.HasPrefix(f.MimeType, "application/vnd.google-apps.") {
		body, err = c.download(ctx, base+"/export?mimeType="+url.QueryEscape("text/plain"))
	} else {
		body, err = c.download(ctx, base+"?alt=media")
	}
	if err != nil {
		return File{}, "", err
	}
	logging.Drive("Read %s (%s, %d bytes)", f.Name, fileID, len(body))
	return f, string(body), nil
}

// CreateDoc creates a Google Doc with the given title and body text.
func (c *Client) CreateDoc(ctx context.Context, title, content string) (File, error) {
	var created struct {
		DocumentID string `json:"documentId"`
	}
	if err := c.do(ctx, "POST", c.docsBaseURL+"/documents", map[string]string{"title": title}, &created); err != nil {
		return File{}, err
	}

	if content != "" {
		if err := c.insertText(ctx, created.DocumentID, 1, content); err != nil {
			return File{}, err
		}
	}
	logging.Drive("Created doc %q (%s)", title, created.DocumentID)
	return c.GetFile(ctx, created.DocumentID)
}

// EditMode selects how EditDoc applies content.
type EditMode string

const (
	// EditReplace deletes the document body and inserts the new content.
	EditReplace EditMode = "replace"

	// EditAppend inserts the content at the end of the document.
	EditAppend EditMode = "append"
)

// ParseEditMode maps a raw mode string to an EditMode, defaulting to
// replace.
func ParseEditMode(raw string) EditMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(EditAppend)) {
		return EditAppend
	}
	return EditReplace
}

// EditDoc rewrites or appends to a Google Doc's body.
func (c *Client) EditDoc(ctx context.Context, docID, content string, mode EditMode) error {
	endIndex, err := c.bodyEndIndex(ctx, docID)
	if err != nil {
		return err
	}

	var requests []map[string]interface{}
	switch mode {
	case EditAppend:
		requests = append(requests, insertTextRequest(endIndex-1, content))
	default:
		// Replace: clear the body first. A body holds indices [1, end-1);
		// an empty doc has nothing to delete.
		if endIndex > 2 {
			requests = append(requests, map[string]interface{}{
				"deleteContentRange": map[string]interface{}{
					"range": map[string]interface{}{"startIndex": 1, "endIndex": endIndex - 1},
				},
			})
		}
		requests = append(requests, insertTextRequest(1, content))
	}

	err = c.do(ctx, "POST", c.docsBaseURL+"/documents/"+url.PathEscape(docID)+":batchUpdate",
		map[string]interface{}{"requests": requests}, nil)
	if err != nil {
		return err
	}
	logging.Drive("Edited doc %s (mode=%s, %d chars)", docID, mode, len(content))
	return nil
}

func (c *Client) insertText(ctx context.Context, docID string, index int, text string) error {
	return c.do(ctx, "POST", c.docsBaseURL+"/documents/"+url.PathEscape(docID)+":batchUpdate",
		map[string]interface{}{"requests": []map[string]interface{}{insertTextRequest(index, text)}}, nil)
}

func insertTextRequest(index int, text string) map[string]interface{} {
	return map[string]interface{}{
		"insertText": map[string]interface{}{
			"location": map[string]interface{}{"index": index},
			"text":     text,
		},
	}
}

// bodyEndIndex returns the end index of the document body.
func (c *Client) bodyEndIndex(ctx context.Context, docID string) (int, error) {
	var doc struct {
		Body struct {
			Content []struct {
				EndIndex int `json:"endIndex"`
			} `json:"content"`
		} `json:"body"`
	}
	if err := c.do(ctx, "GET", c.docsBaseURL+"/documents/"+url.PathEscape(docID), nil, &doc); err != nil {
		return 0, err
	}
	end := 1
	for _, el := range doc.Body.Content {
		if el.EndIndex > end {
			end = el.EndIndex
		}
	}
	return end, nil
}

// MoveFile moves a file into a new parent folder.
func (c *Client) MoveFile(ctx context.Context, fileID, folderID string) (File, error) {
	f, err := c.GetFile(ctx, fileID)
	if err != nil {
		return File{}, err
	}

	params := url.Values{}
	params.Set("addParents", folderID)
	if len(f.Parents) > 0 {
		params.Set("removeParents", strings.Join(f.Parents, ","))
	}
	params.Set("fields", "id, name, mimeType, webViewLink, parents")

	var moved File
	err = c.do(ctx, "PATCH", c.driveBaseURL+"/files/"+url.PathEscape(fileID)+"?"+params.Encode(),
		map[string]string{}, &moved)
	if err != nil {
		return File{}, err
	}
	logging.Drive("Moved %s into folder %s", fileID, folderID)
	return moved, nil
}

// CopyFile copies a file, optionally with a new name.
func (c *Client) CopyFile(ctx context.Context, fileID, newName string) (File, error) {
	body := map[string]string{}
	if newName != "" {
		body["name"] = newName
	}
	params := url.Values{}
	params.Set("fields", "id, name, mimeType, webViewLink, parents")

	var copied File
	err := c.do(ctx, "POST", c.driveBaseURL+"/files/"+url.PathEscape(fileID)+"/copy?"+params.Encode(), body, &copied)
	if err != nil {
		return File{}, err
	}
	logging.Drive("Copied %s to %s (%s)", fileID, copied.Name, copied.ID)
	return copied, nil
}

// RenameFile renames a file.
func (c *Client) RenameFile(ctx context.Context, fileID, newName string) (File, error) {
	params := url.Values{}
	params.Set("fields", "id, name, mimeType, webViewLink, parents")

	var renamed File
	err := c.do(ctx, "PATCH", c.driveBaseURL+"/files/"+url.PathEscape(fileID)+"?"+params.Encode(),
		map[string]string{"name": newName}, &renamed)
	if err != nil {
		return File{}, err
	}
	logging.Drive("Renamed %s to %q", fileID, newName)
	return renamed, nil
}

// CreateFolder creates a folder, optionally under a parent.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (File, error) {
	body := map[string]interface{}{
		"name":     name,
		"mimeType": folderMimeType,
	}
	if parentID != "" {
		body["parents"] = []string{parentID}
	}
	params := url.Values{}
	params.Set("fields", "id, name, mimeType, webViewLink, parents")

	var folder File
	err := c.do(ctx, "POST", c.driveBaseURL+"/files?"+params.Encode(), body, &folder)
	if err != nil {
		return File{}, err
	}
	logging.Drive("Created folder %q (%s)", name, folder.ID)
	return folder, nil
}

// escapeQuery escapes single quotes and backslashes for Drive q strings.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
