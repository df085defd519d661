package search

import (
	"context"

	"github.com/standardbeagle/manifold/internal/compress"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
)

// SignatureOf returns rel's stored sig, computing and persisting it on
// demand from doc if absent (spec.md §4.6 "Signature lookup").
func SignatureOf(ctx context.Context, st *store.Store, rel string, cfg signature.Config) (string, bool, error) {
	if sig, ok, err := st.GetFileField(ctx, rel, store.FieldSig); err != nil {
		return "", false, err
	} else if ok && sig != "" {
		return sig, true, nil
	}

	doc, ok, err := st.GetFileField(ctx, rel, store.FieldDoc)
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	body := compress.DecodeString(doc)
	sig, hasSig := signature.Encode(body, cfg).FirstWindowSignature()
	if !hasSig {
		return "", false, nil
	}

	if err := st.PutFile(ctx, rel, map[string]string{store.FieldSig: sig}, int64(len(body))); err != nil {
		return "", false, err
	}
	return sig, true, nil
}
