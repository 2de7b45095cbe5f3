package docker

import (
	"context"
	"os"
	"regexp"
	"time"

	"github.com/thanhnhan2tn/package-updater/pkg/errors"
	"github.com/thanhnhan2tn/package-updater/pkg/fsutil"
	"github.com/thanhnhan2tn/package-updater/pkg/observability"
)

// SetFromTag rewrites the first FROM line naming image to use tag. The
// --platform flag and any "AS stage" suffix are kept. changed is false when no
// FROM line names image or it already carries tag.
func SetFromTag(ctx context.Context, locks *fsutil.Locker, path, image, tag string) (changed bool, err error) {
	if err := errors.ValidateImageName(image); err != nil {
		return false, err
	}
	if err := errors.ValidateImageTag(tag); err != nil {
		return false, err
	}

	start := time.Now()
	defer func() {
		observability.Upgrade().OnUpgrade(ctx, "docker", image, changed, time.Since(start), err)
	}()

	unlock := locks.Lock(path)
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, errors.Wrap(errors.ErrCodeFileNotFound, err, "dockerfile %s", path)
		}
		return false, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}

	out, ok := replaceFrom(data, image, tag)
	if !ok {
		return false, nil
	}
	if string(out) == string(data) {
		return false, nil
	}
	if err := fsutil.WriteFileAtomic(path, out); err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return true, nil
}

func replaceFrom(data []byte, image, tag string) ([]byte, bool) {
	re := regexp.MustCompile(`(?mi)^(\s*FROM\s+(?:--platform=\S+\s+)?)` + regexp.QuoteMeta(image) + `(?::[^\s@/]+)?(@\S+)?([ \t]|$)`)
	loc := re.FindSubmatchIndex(data)
	if loc == nil {
		return data, false
	}
	prefix := data[loc[2]:loc[3]]
	trail := data[loc[6]:loc[7]]

	var out []byte
	out = append(out, data[:loc[0]]...)
	out = append(out, prefix...)
	out = append(out, image+":"+tag...)
	out = append(out, trail...)
	out = append(out, data[loc[1]:]...)
	return out, true
}
