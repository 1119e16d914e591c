// Package overlay keeps small per-user exclusion sets and applies them to fetched windows.
//
// An exclusion set is keyed by (userID, category) where the category is one of the
// [models.TimeRange] values. Sets hold at most [MaxHidden] ids in insertion order and
// adding an id that is already present succeeds without change.
//
// [Filter] removes excluded items from a window. [MaterializeHidden] resolves excluded
// ids back into full items by fetching one candidate window of [MaxWindow] items, so
// callers can show what is hidden without a by-id lookup. Ids outside the candidate
// window are reported as missing rather than failing the request.
package overlay
