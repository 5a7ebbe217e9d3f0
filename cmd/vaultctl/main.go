// vaultctl inspects and exports a local vault slot file without going
// through the server. The folder gate only guards browsing in the UI;
// the slot file itself is readable by its owner either way.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"nothivault/internal/vault/codec"
	"nothivault/internal/vault/export"
	"nothivault/internal/vault/folder"
	"nothivault/internal/vault/store"

	"github.com/joho/godotenv"
)

const usage = `usage: vaultctl <command> [args]

commands:
  folders                      list the configured folders
  list <folder-id>             list documents in a folder
  export <record-id> [dir]     write one document back to disk
  export-folder <folder-id> [dir]
                               write a whole folder as a ZIP archive

The vault file is taken from VAULT_PATH (default ./storage/vault.json).`

type usageError struct {
	Cause string
}

func (e *usageError) Error() string {
	return e.Cause
}

func main() {
	_ = godotenv.Load()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if _, ok := err.(*usageError); ok {
			fmt.Fprintln(os.Stderr, usage)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return &usageError{Cause: "no command provided"}
	}

	path := os.Getenv("VAULT_PATH")
	if path == "" {
		path = "./storage/vault.json"
	}

	ctx := context.Background()
	st, err := store.Open(ctx, store.NewFileSlot(path))
	if err != nil {
		return fmt.Errorf("open vault %s: %w", path, err)
	}

	switch cmd := args[0]; cmd {
	case "folders":
		return runFolders(st)
	case "list":
		if len(args) < 2 {
			return &usageError{Cause: "list requires a folder id"}
		}
		return runList(st, args[1])
	case "export":
		if len(args) < 2 {
			return &usageError{Cause: "export requires a record id"}
		}
		return runExport(st, args[1], outDir(args, 2))
	case "export-folder":
		if len(args) < 2 {
			return &usageError{Cause: "export-folder requires a folder id"}
		}
		return runExportFolder(st, args[1], outDir(args, 2))
	default:
		return &usageError{Cause: fmt.Sprintf("unknown command %q", cmd)}
	}
}

func outDir(args []string, idx int) string {
	if len(args) > idx {
		return args[idx]
	}
	return "."
}

func runFolders(st *store.Store) error {
	registry := folder.Default()
	if path := os.Getenv("VAULT_FOLDERS_FILE"); path != "" {
		var err error
		if registry, err = folder.LoadFile(path); err != nil {
			return fmt.Errorf("load folders file: %w", err)
		}
	}
	for _, def := range registry.Definitions() {
		count := len(st.ByCategory(def.ID))
		fmt.Printf("%s  %-10s %s (%d files)\n", def.Icon, def.ID, def.Label, count)
	}
	return nil
}

func runList(st *store.Store, folderID string) error {
	records := st.ByCategory(folderID)
	if len(records) == 0 {
		fmt.Printf("no documents in %s\n", folderID)
		return nil
	}
	for _, r := range records {
		fmt.Printf("%s  %-30s %-24s %s\n", r.ID, r.Name, r.MimeType, r.SizeLabel)
	}
	return nil
}

func runExport(st *store.Store, id, dir string) error {
	rec, ok := st.Get(id)
	if !ok {
		return fmt.Errorf("record %s not found", id)
	}

	_, data, err := codec.Decode(rec.DataURL)
	if err != nil {
		return fmt.Errorf("decode payload of %s: %w", id, err)
	}

	dest := filepath.Join(dir, rec.Name)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	fmt.Printf("✓ Exported %s (%s) to %s\n", rec.Name, rec.SizeLabel, dest)
	return nil
}

func runExportFolder(st *store.Store, folderID, dir string) error {
	records := st.ByCategory(folderID)
	archive, err := export.FolderArchive(records)
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}

	dest := filepath.Join(dir, folderID+".zip")
	if err := os.WriteFile(dest, archive, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	fmt.Printf("✓ Exported %d documents to %s (%d bytes)\n", len(records), dest, len(archive))
	return nil
}
