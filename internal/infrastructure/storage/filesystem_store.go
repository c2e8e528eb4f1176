package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/optica-api/internal/application/billing"
	"github.com/jhoicas/optica-api/internal/domain"
)

var _ billing.ArtifactStore = (*FilesystemStore)(nil)

// FilesystemStore guarda los documentos fiscales bajo un directorio raíz.
// El handle es el nombre de archivo relativo a la raíz; nunca una ruta absoluta.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore crea el directorio raíz si no existe.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage: directorio vacío")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", root, err)
	}
	return &FilesystemStore{root: root}, nil
}

// Save escribe content con un nombre único derivado de name (name sin extensión + uuid).
// Escribe a un temporal y renombra, así un lector nunca ve un archivo a medias.
func (s *FilesystemStore) Save(ctx context.Context, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	handle := fmt.Sprintf("%s_%s%s", strings.TrimSuffix(base, ext), uuid.NewString(), ext)

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: crear temporal: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("storage: escribir %s: %w", handle, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("storage: cerrar %s: %w", handle, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, handle)); err != nil {
		return "", fmt.Errorf("storage: guardar %s: %w", handle, err)
	}
	return handle, nil
}

// Open devuelve el contenido; domain.ErrNotFound si no existe.
func (s *FilesystemStore) Open(ctx context.Context, handle string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(handle)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: leer %s: %w", handle, err)
	}
	return b, nil
}

// Delete elimina el documento. Borrar uno inexistente no es error.
func (s *FilesystemStore) Delete(_ context.Context, handle string) error {
	path, err := s.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: eliminar %s: %w", handle, err)
	}
	return nil
}

// path resuelve el handle dentro de la raíz; rechaza separadores y "..".
func (s *FilesystemStore) path(handle string) (string, error) {
	if handle == "" || handle != filepath.Base(handle) || handle == ".." || strings.HasPrefix(handle, ".") {
		return "", fmt.Errorf("storage: handle inválido %q: %w", handle, domain.ErrInvalidInput)
	}
	return filepath.Join(s.root, handle), nil
}
