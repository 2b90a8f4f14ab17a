// Package clickgate classifies pointer events coming from a graph
// visualization widget into single-click, double-click and right-click
// notifications for the page that embeds the widget.
//
// A single click is held back for a short window so that a following
// double click on the same node can suppress it. Right clicks resolve the
// node spatially through the widget and cancel a pending single click on the
// same node.
//
// The widget handle may appear after the classifier starts, so listeners are
// attached through a Gate that polls for the handle a bounded number of
// times and gives up silently.
package clickgate
