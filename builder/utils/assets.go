package utils

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// BuildAssetsEsbuild bundles the theme's JS and CSS entry points into the
// destination filesystem and returns a map from logical asset paths to their
// hashed output paths for template lookups.
func BuildAssetsEsbuild(srcFs afero.Fs, destFs afero.Fs, srcDir, destDir string, minify bool, onWrite func(string)) (map[string]string, error) {
	fmt.Println("🎨 Building assets with Esbuild...")
	assets := make(map[string]string)

	var jsEntryPoints []string
	var cssEntryPoints []string

	err := afero.Walk(srcFs, srcDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".js":
			jsEntryPoints = append(jsEntryPoints, path)
		case ".css":
			cssEntryPoints = append(cssEntryPoints, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for assets: %w", err)
	}

	process := func(entryPoints []string, bundle bool) error {
		if len(entryPoints) == 0 {
			return nil
		}
		buildOptions := api.BuildOptions{
			EntryPoints:       entryPoints,
			Bundle:            bundle,
			Write:             false,
			Outdir:            destDir,
			Outbase:           srcDir,
			MinifyWhitespace:  minify,
			MinifyIdentifiers: minify,
			MinifySyntax:      minify,
			Sourcemap:         api.SourceMapExternal,
			Metafile:          true,
			Loader: map[string]api.Loader{
				".woff2": api.LoaderFile,
				".woff":  api.LoaderFile,
				".ttf":   api.LoaderFile,
				".png":   api.LoaderFile,
				".webp":  api.LoaderFile,
				".svg":   api.LoaderFile,
			},
		}

		if minify {
			buildOptions.EntryNames = "[dir]/[name].[hash]"
			buildOptions.AssetNames = "assets/[name].[hash]"
		}

		result := api.Build(buildOptions)
		if len(result.Errors) > 0 {
			return fmt.Errorf("esbuild failed with %d errors", len(result.Errors))
		}

		for _, outFile := range result.OutputFiles {
			outPath := filepath.Clean(outFile.Path)
			if err := destFs.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return err
			}
			if err := afero.WriteFile(destFs, outPath, outFile.Contents, 0644); err != nil {
				return err
			}
			if onWrite != nil {
				onWrite(outPath)
			}
		}

		// The metafile maps entry points to hashed outputs
		type Metafile struct {
			Outputs map[string]struct {
				EntryPoint string `json:"entryPoint"`
			} `json:"outputs"`
		}

		var meta Metafile
		if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
			return fmt.Errorf("failed to parse metafile: %w", err)
		}

		// Metafile paths are relative to the working directory; the map keys
		// and values are URL paths under the static mount.
		cwd, _ := os.Getwd()
		for outPath, outInfo := range meta.Outputs {
			if outInfo.EntryPoint == "" {
				continue
			}

			entry := outInfo.EntryPoint
			if !filepath.IsAbs(entry) {
				entry = filepath.Join(cwd, entry)
			}
			relEntry, err := filepath.Rel(srcDir, entry)
			if err != nil {
				continue
			}

			out := outPath
			if !filepath.IsAbs(out) {
				out = filepath.Join(cwd, out)
			}
			relOut, err := filepath.Rel(destDir, out)
			if err != nil {
				continue
			}

			assets["/static/"+filepath.ToSlash(relEntry)] = "/static/" + filepath.ToSlash(relOut)
		}
		return nil
	}

	// CSS bundles (for @import and fonts); JS entry points stay standalone
	if err := process(cssEntryPoints, true); err != nil {
		return nil, err
	}
	if err := process(jsEntryPoints, false); err != nil {
		return nil, err
	}

	return assets, nil
}
