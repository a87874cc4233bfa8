package drivetools

import (
	"context"
	"fmt"
	"strings"

	"riabuilder/internal/tools"
)

// Register adds the Drive file tools to the registry.
func Register(r *tools.Registry, client *Client) {
	r.MustRegister(listFilesTool(client))
	r.MustRegister(searchFilesTool(client))
	r.MustRegister(readFileTool(client))
	r.MustRegister(createDocTool(client))
	r.MustRegister(editDocTool(client))
	r.MustRegister(moveFileTool(client))
	r.MustRegister(copyFileTool(client))
	r.MustRegister(renameFileTool(client))
	r.MustRegister(listFoldersTool(client))
	r.MustRegister(createFolderTool(client))
}

func renderFiles(header string, files []File) string {
	if len(files) == 0 {
		return header + "\n\nNo files found."
	}
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, f := range files {
		kind := "file"
		if f.IsFolder() {
			kind = "folder"
		}
		if f.WebViewLink != "" {
			fmt.Fprintf(&b, "- [%s](%s) (%s, id: %s)\n", f.Name, f.WebViewLink, kind, f.ID)
		} else {
			fmt.Fprintf(&b, "- %s (%s, id: %s)\n", f.Name, kind, f.ID)
		}
	}
	return strings.TrimSpace(b.String())
}

func describeFile(action string, f File) string {
	if f.WebViewLink != "" {
		return fmt.Sprintf("%s **%s** (id: %s): %s", action, f.Name, f.ID, f.WebViewLink)
	}
	return fmt.Sprintf("%s **%s** (id: %s).", action, f.Name, f.ID)
}

func listFilesTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "list_drive_files",
		Description: "List files in a Google Drive folder (root by default).",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Properties: map[string]tools.Property{
				"folder_id": {Type: "string", Description: "Folder id to list, defaults to the Drive root"},
				"page_size": {Type: "integer", Description: "Number of files to return", Default: defaultPageSize},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			folderID := tools.StringArg(args, "folder_id", "")
			files, err := client.ListFiles(ctx, folderID, tools.IntArg(args, "page_size", 0))
			if err != nil {
				return "", err
			}
			header := "Files in Drive root:"
			if folderID != "" {
				header = fmt.Sprintf("Files in folder %s:", folderID)
			}
			return renderFiles(header, files), nil
		},
	}
}

func searchFilesTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "search_drive_files",
		Description: "Search Google Drive for files by name.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"query"},
			Properties: map[string]tools.Property{
				"query":     {Type: "string", Description: "Text the filename must contain"},
				"page_size": {Type: "integer", Description: "Number of files to return", Default: defaultPageSize},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, err := tools.RequiredString(args, "query")
			if err != nil {
				return "", err
			}
			files, err := client.SearchFiles(ctx, query, tools.IntArg(args, "page_size", 0))
			if err != nil {
				return "", err
			}
			return renderFiles(fmt.Sprintf("Drive files matching %q:", query), files), nil
		},
	}
}

func readFileTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "read_drive_file",
		Description: "Read the text content of a Google Drive file by id. Google Docs are exported as plain text.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"file_id"},
			Properties: map[string]tools.Property{
				"file_id": {Type: "string", Description: "Drive file id"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			fileID, err := tools.RequiredString(args, "file_id")
			if err != nil {
				return "", err
			}
			f, content, err := client.ReadFile(ctx, fileID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("**%s**\n\n%s", f.Name, strings.TrimSpace(content)), nil
		},
	}
}

func createDocTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "create_drive_doc",
		Description: "Create a new Google Doc with a title and body text.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"title"},
			Properties: map[string]tools.Property{
				"title":   {Type: "string", Description: "Document title"},
				"content": {Type: "string", Description: "Body text for the new document"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			title, err := tools.RequiredString(args, "title")
			if err != nil {
				return "", err
			}
			f, err := client.CreateDoc(ctx, title, tools.StringArg(args, "content", ""))
			if err != nil {
				return "", err
			}
			return describeFile("Created doc", f), nil
		},
	}
}

func editDocTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "edit_drive_doc",
		Description: "Edit a Google Doc: replace its body or append to it.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"file_id", "content"},
			Properties: map[string]tools.Property{
				"file_id": {Type: "string", Description: "Google Doc id"},
				"content": {Type: "string", Description: "Text to write"},
				"mode":    {Type: "string", Description: "How to apply the content", Enum: []any{"replace", "append"}, Default: "replace"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			fileID, err := tools.RequiredString(args, "file_id")
			if err != nil {
				return "", err
			}
			content, err := tools.RequiredString(args, "content")
			if err != nil {
				return "", err
			}
			mode := ParseEditMode(tools.StringArg(args, "mode", ""))
			if err := client.EditDoc(ctx, fileID, content, mode); err != nil {
				return "", err
			}
			if mode == EditAppend {
				return fmt.Sprintf("Appended %d characters to doc %s.", len(content), fileID), nil
			}
			return fmt.Sprintf("Replaced the body of doc %s (%d characters).", fileID, len(content)), nil
		},
	}
}

func moveFileTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "move_drive_file",
		Description: "Move a Google Drive file into another folder.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"file_id", "folder_id"},
			Properties: map[string]tools.Property{
				"file_id":   {Type: "string", Description: "File to move"},
				"folder_id": {Type: "string", Description: "Destination folder id"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			fileID, err := tools.RequiredString(args, "file_id")
			if err != nil {
				return "", err
			}
			folderID, err := tools.RequiredString(args, "folder_id")
			if err != nil {
				return "", err
			}
			f, err := client.MoveFile(ctx, fileID, folderID)
			if err != nil {
				return "", err
			}
			return describeFile("Moved", f), nil
		},
	}
}

func copyFileTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "copy_drive_file",
		Description: "Copy a Google Drive file, optionally with a new name.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"file_id"},
			Properties: map[string]tools.Property{
				"file_id":  {Type: "string", Description: "File to copy"},
				"new_name": {Type: "string", Description: "Name for the copy"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			fileID, err := tools.RequiredString(args, "file_id")
			if err != nil {
				return "", err
			}
			f, err := client.CopyFile(ctx, fileID, tools.StringArg(args, "new_name", ""))
			if err != nil {
				return "", err
			}
			return describeFile("Copied to", f), nil
		},
	}
}

func renameFileTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "rename_drive_file",
		Description: "Rename a Google Drive file.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"file_id", "new_name"},
			Properties: map[string]tools.Property{
				"file_id":  {Type: "string", Description: "File to rename"},
				"new_name": {Type: "string", Description: "New filename"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			fileID, err := tools.RequiredString(args, "file_id")
			if err != nil {
				return "", err
			}
			newName, err := tools.RequiredString(args, "new_name")
			if err != nil {
				return "", err
			}
			f, err := client.RenameFile(ctx, fileID, newName)
			if err != nil {
				return "", err
			}
			return describeFile("Renamed to", f), nil
		},
	}
}

func listFoldersTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "list_drive_folders",
		Description: "List Google Drive folders, optionally under a parent folder.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Properties: map[string]tools.Property{
				"parent_id": {Type: "string", Description: "Restrict to folders inside this folder"},
				"page_size": {Type: "integer", Description: "Number of folders to return", Default: defaultPageSize},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			folders, err := client.ListFolders(ctx,
				tools.StringArg(args, "parent_id", ""),
				tools.IntArg(args, "page_size", 0))
			if err != nil {
				return "", err
			}
			return renderFiles("Drive folders:", folders), nil
		},
	}
}

func createFolderTool(client *Client) *tools.Tool {
	return &tools.Tool{
		Name:        "create_drive_folder",
		Description: "Create a Google Drive folder, optionally inside a parent folder.",
		Category:    tools.CategoryDrive,
		Schema: tools.ToolSchema{
			Required: []string{"name"},
			Properties: map[string]tools.Property{
				"name":      {Type: "string", Description: "Folder name"},
				"parent_id": {Type: "string", Description: "Parent folder id"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			name, err := tools.RequiredString(args, "name")
			if err != nil {
				return "", err
			}
			f, err := client.CreateFolder(ctx, name, tools.StringArg(args, "parent_id", ""))
			if err != nil {
				return "", err
			}
			return describeFile("Created folder", f), nil
		},
	}
}
