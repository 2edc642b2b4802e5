package bundle

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	serrors "github.com/stagehand/cli/internal/errors"
)

// ArchiveSuffix is the file suffix for exported bundles.
const ArchiveSuffix = ".tar.xz"

// Export writes a stored bundle as a tar.xz archive. An empty dest derives
// "<name>.tar.xz" in the working directory. Returns the written path.
func (s *Store) Export(name, dest string) (string, error) {
	if _, err := s.Get(name); err != nil {
		return "", err
	}

	if dest == "" {
		dest = name + ArchiveSuffix
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}

	xzw, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return "", fmt.Errorf("starting xz stream: %w", err)
	}
	tw := tar.NewWriter(xzw)

	root := s.Dir(name)
	walkErr := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = path.Join(name, filepath.ToSlash(rel))
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		in, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, in)
		in.Close()
		return err
	})

	closeErr := tw.Close()
	if xzErr := xzw.Close(); closeErr == nil {
		closeErr = xzErr
	}
	if fErr := f.Close(); closeErr == nil {
		closeErr = fErr
	}

	if walkErr != nil {
		os.Remove(dest)
		return "", fmt.Errorf("archiving bundle %s: %w", name, walkErr)
	}
	if closeErr != nil {
		os.Remove(dest)
		return "", fmt.Errorf("finishing archive: %w", closeErr)
	}

	return dest, nil
}

// Import extracts a tar.xz archive produced by Export into the store and
// verifies every extracted file against the manifest it carries. The
// archive must hold exactly one bundle, and its name must not already be
// stored.
func (s *Store) Import(src string) (*Manifest, error) {
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.NewNotFoundError("archive not found", src, "")
		}
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return nil, serrors.NewBundleError(
			"archive is not a valid xz stream",
			map[string]string{"Archive": src},
			"",
		)
	}

	tr := tar.NewReader(xzr)

	var name string
	cleanup := func() {
		if name != "" {
			s.discard(s.Dir(name))
		}
	}

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			cleanup()
			return nil, serrors.NewBundleError(
				"archive is not a valid tar stream",
				map[string]string{"Archive": src},
				"",
			)
		}

		clean := path.Clean(hdr.Name)
		if clean == "." || clean == "/" {
			continue
		}
		if path.IsAbs(clean) || strings.HasPrefix(clean, "..") || strings.Contains(clean, `\`) {
			cleanup()
			return nil, serrors.NewBundleError(
				"archive contains an unsafe path",
				map[string]string{"Archive": src, "Path": hdr.Name},
				"",
			)
		}

		top, _, _ := strings.Cut(clean, "/")
		if name == "" {
			if err := validateName(top); err != nil {
				return nil, err
			}
			if s.Exists(top) {
				return nil, serrors.NewBundleError(
					"bundle already exists",
					map[string]string{"Name": top},
					"Bundles are immutable; delete the existing bundle first",
				)
			}
			name = top
		} else if top != name {
			cleanup()
			return nil, serrors.NewBundleError(
				"archive contains more than one bundle",
				map[string]string{"Archive": src, "First": name, "Second": top},
				"",
			)
		}

		target := filepath.Join(s.root, filepath.FromSlash(clean))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				cleanup()
				return nil, fmt.Errorf("extracting %s: %w", clean, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				cleanup()
				return nil, fmt.Errorf("extracting %s: %w", clean, err)
			}
			out, err := os.Create(target)
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("extracting %s: %w", clean, err)
			}
			_, err = io.Copy(out, tr)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				cleanup()
				return nil, fmt.Errorf("extracting %s: %w", clean, err)
			}
		default:
			cleanup()
			return nil, serrors.NewBundleError(
				"archive contains an unsupported entry type",
				map[string]string{"Archive": src, "Path": hdr.Name},
				"",
			)
		}
	}

	if name == "" {
		return nil, serrors.NewBundleError(
			"archive is empty",
			map[string]string{"Archive": src},
			"",
		)
	}

	m, err := s.Get(name)
	if err != nil {
		cleanup()
		return nil, err
	}
	if err := s.VerifyFiles(m); err != nil {
		cleanup()
		return nil, err
	}

	return m, nil
}
