package renderer

import (
	"bufio"
	"io"
	"path/filepath"

	"github.com/foliogen/folio/builder/models"
	"github.com/foliogen/folio/builder/utils"
)

// RenderIndex writes a post-list page, preferring the dedicated index
// template when the site ships one.
func (r *Renderer) RenderIndex(path string, data models.PageData) error {
	data.Assets = r.GetAssets()

	if err := r.DestFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.logger.Error("Failed to create directory", "path", path, "error", err)
		return err
	}
	f, err := r.DestFs.Create(path)
	if err != nil {
		r.logger.Error("Failed to create file", "path", path, "error", err)
		return err
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriterSize(f, utils.MaxBufferSize)
	defer func() { _ = bw.Flush() }()

	var w io.Writer = bw

	if r.Compress {
		mw := utils.Minifier.Writer("text/html", bw)
		defer func() { _ = mw.Close() }()
		w = mw
	}

	var errExec error
	if r.Index != nil {
		errExec = r.Index.Execute(w, data)
	} else {
		errExec = r.Layout.Execute(w, data)
	}
	if errExec != nil {
		r.logger.Error("Failed to render index", "path", path, "error", errExec)
		return errExec
	}
	r.RegisterFile(path)
	return nil
}

// Render404 writes the not-found page.
func (r *Renderer) Render404(path string, data models.PageData) error {
	data.Assets = r.GetAssets()

	if err := r.DestFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.logger.Error("Failed to create directory", "path", path, "error", err)
		return err
	}
	f, err := r.DestFs.Create(path)
	if err != nil {
		r.logger.Error("Failed to create file", "path", path, "error", err)
		return err
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriterSize(f, utils.MaxBufferSize)
	defer func() { _ = bw.Flush() }()

	var w io.Writer = bw

	if r.Compress {
		mw := utils.Minifier.Writer("text/html", bw)
		defer func() { _ = mw.Close() }()
		w = mw
	}

	var errExec error
	if r.NotFound != nil {
		errExec = r.NotFound.Execute(w, data)
	} else {
		errExec = r.Layout.Execute(w, data)
	}
	if errExec != nil {
		r.logger.Error("Failed to render 404", "path", path, "error", errExec)
		return errExec
	}
	r.RegisterFile(path)
	return nil
}
