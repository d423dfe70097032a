package main

import "testing"

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"migrate", "create-admin", "prune-logs"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
}

func TestCreateAdminRequiresFlags(t *testing.T) {
	cmd := newCreateAdminCmd()
	for _, flag := range []string{"email", "password", "name"} {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Fatalf("missing --%s", flag)
		}
		if _, ok := f.Annotations["cobra_annotation_bash_completion_one_required_flag"]; !ok {
			t.Errorf("--%s should be required", flag)
		}
	}
}

func TestPruneLogsDefaultsToRetention(t *testing.T) {
	f := newPruneLogsCmd().Flags().Lookup("days")
	if f == nil || f.DefValue != "30" {
		t.Errorf("days default = %v", f)
	}
}
