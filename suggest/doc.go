// Package suggest builds query completions from the live vocabulary and
// proposes alternative or related queries when a search comes back thin.
package suggest
