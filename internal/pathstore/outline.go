package pathstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/doctoc/internal/toc"
)

// DocumentsPrefix is the key prefix holding a user's documents.
func DocumentsPrefix(userID string) string {
	return fmt.Sprintf("docs/users/%s/documents", userID)
}

// OutlineKey is where a document's outline is stored.
func OutlineKey(userID, docID string) string {
	return fmt.Sprintf("%s/%s/outline", DocumentsPrefix(userID), docID)
}

// PutOutline stores an outline for a document.
func (c *Client) PutOutline(ctx context.Context, userID, docID string, o toc.Outline, source string) error {
	return c.PutNode(ctx, OutlineKey(userID, docID), NodeRequest{
		Value:  o,
		Source: source,
	})
}

// GetOutline loads a stored outline. A missing outline returns nil, nil.
func (c *Client) GetOutline(ctx context.Context, userID, docID string) (*toc.Outline, error) {
	node, err := c.GetNode(ctx, OutlineKey(userID, docID))
	if err != nil || node == nil {
		return nil, err
	}
	var o toc.Outline
	if err := json.Unmarshal(node.Value, &o); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	return &o, nil
}

// DeleteDocument removes a document and everything stored beneath it.
func (c *Client) DeleteDocument(ctx context.Context, userID, docID string) error {
	return c.DeleteNode(ctx, fmt.Sprintf("%s/%s", DocumentsPrefix(userID), docID), true)
}
