package domain

// WishlistSnapshot mirrors the server-owned wishlist for one session.
// Like the cart it is replaced wholesale, never patched incrementally.
type WishlistSnapshot struct {
	Items []ProductSummary `json:"items"`
}

// Contains reports whether productID is in the last fetched snapshot.
// Pure local lookup, no network involved.
func (w *WishlistSnapshot) Contains(productID string) bool {
	if w == nil {
		return false
	}
	for _, item := range w.Items {
		if item.ID == productID {
			return true
		}
	}
	return false
}
