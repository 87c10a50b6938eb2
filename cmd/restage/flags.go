package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// SaveFlags holds flags for the save command.
type SaveFlags struct {
	Name string
}

// RestoreFlags holds flags for the restore command.
type RestoreFlags struct {
	Name    string
	Timeout time.Duration
}

// DeleteFlags holds flags for the delete command.
type DeleteFlags struct {
	Name  string
	Force bool
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	Listen   string
	BasePath string
}
