package parser

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxZipMembers bounds how many text members are extracted from one
// RIPS bundle.
const maxZipMembers = 10

// ExtractZipText unpacks the .txt members of a zip bundle into a fresh
// temporary directory and returns their paths in archive order. The
// caller owns the directory and removes it when done. A corrupt archive
// or one without text members yields issues and no paths.
func ExtractZipText(path string) (dir string, members []string, issues []Issue) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, []Issue{issuef(0, "archivo", "Archivo ZIP corrupto o ilegible: %v", err)}
	}
	defer reader.Close()

	dir, err = os.MkdirTemp("", "rips-zip-")
	if err != nil {
		return "", nil, []Issue{issuef(0, "archivo", "No se pudo crear el directorio temporal: %v", err)}
	}

	for _, member := range reader.File {
		if len(members) >= maxZipMembers {
			break
		}
		if member.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(member.Name)
		if !strings.EqualFold(filepath.Ext(name), ".txt") {
			continue
		}
		target := filepath.Join(dir, name)
		if err := extractMember(member, target); err != nil {
			issues = append(issues, issuef(0, name, "No se pudo extraer el archivo del ZIP: %v", err))
			continue
		}
		members = append(members, target)
	}

	if len(members) == 0 && len(issues) == 0 {
		os.RemoveAll(dir)
		return "", nil, []Issue{issuef(0, "archivo", "El ZIP no contiene archivos .txt para validar")}
	}
	return dir, members, issues
}

func extractMember(member *zip.File, target string) error {
	src, err := member.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
