package synth

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/skt-inc/quicklink-infra/internal/common"
)

// TemplatePath returns the deterministic artifact path for a stack.
func TemplatePath(dir string, stackName common.StackName) string {
	return filepath.Join(dir, string(stackName)+".template.json")
}

// Write serializes the document to <dir>/<stackName>.template.json, creating
// the directory if absent. The file handle is closed on every exit path. An
// unchanged document overwrites the prior artifact with identical bytes.
func Write(dir string, stackName common.StackName, doc *Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating output directory %s", dir)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding template")
	}
	data = append(data, '\n')

	path := TemplatePath(dir, stackName)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating template %s", path)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil {
		return "", errors.Wrapf(writeErr, "writing template %s", path)
	}
	if closeErr != nil {
		return "", errors.Wrapf(closeErr, "closing template %s", path)
	}
	return path, nil
}
