package tui

import "errors"

// ErrMissingHighlightService is returned when the highlight service is not provided.
var ErrMissingHighlightService = errors.New("tui: highlight service is required")

// ErrMissingNavigator is returned when the navigator is not provided.
var ErrMissingNavigator = errors.New("tui: navigator is required")

// ErrMissingTree is returned when the document tree is not provided.
var ErrMissingTree = errors.New("tui: document tree is required")
