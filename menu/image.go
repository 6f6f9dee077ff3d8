package menu

import (
	"io"
	"path/filepath"

	"servecart/utils"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const thumbWidth = 300

// SaveImage decodes an uploaded picture and writes it with a thumbnail
// under dir. It returns the public paths of both files.
func SaveImage(src io.Reader, dir, itemID string) (image, thumbnail string, err error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", "", errors.Wrap(err, "decode image")
	}

	name := utils.SanitizeFilename(itemID) + "-" + utils.ShortID(8) + ".jpg"
	thumbDir := filepath.Join(dir, "thumb")
	if err := utils.EnsureDir(thumbDir); err != nil {
		return "", "", errors.Wrap(err, "create upload directory")
	}

	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return "", "", errors.Wrap(err, "save image")
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, name)); err != nil {
		return "", "", errors.Wrap(err, "save thumbnail")
	}
	return "/menupic/" + name, "/menupic/thumb/" + name, nil
}
