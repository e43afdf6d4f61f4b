package main

import "fmt"

// UnexportedObjects holds schema objects that exist in the database but are
// not part of a table/view dump.
type UnexportedObjects struct {
	Routines []string
	Triggers []string
	Events   []string
}

func unexportedObjectWarnings(objs *UnexportedObjects) []string {
	if objs == nil {
		return nil
	}

	var warnings []string
	if len(objs.Routines) == 0 && len(objs.Triggers) == 0 && len(objs.Events) == 0 {
		return warnings
	}

	warnings = append(warnings,
		fmt.Sprintf(
			"database contains objects not included in the dump (%d routines, %d triggers, %d events)",
			len(objs.Routines), len(objs.Triggers), len(objs.Events),
		),
	)
	for _, r := range objs.Routines {
		warnings = append(warnings, fmt.Sprintf("routine: %s", r))
	}
	for _, t := range objs.Triggers {
		warnings = append(warnings, fmt.Sprintf("trigger: %s", t))
	}
	for _, e := range objs.Events {
		warnings = append(warnings, fmt.Sprintf("event: %s", e))
	}
	return warnings
}
