package nodeproc

import (
	"encoding/json"

	"codedocs/internal/docmodel"
	"codedocs/internal/docwriter"
)

func writeFragment(docsRoot, relPath string, fragment *docmodel.GraphFragment) error {
	b, err := json.MarshalIndent(fragment, "", "  ")
	if err != nil {
		return err
	}
	if err := docwriter.WriteAtomic(docsRoot, relPath, b); err != nil {
		return err
	}
	return docwriter.VerifyNonEmpty(docsRoot, relPath)
}
