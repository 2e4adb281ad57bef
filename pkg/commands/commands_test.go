package commands

import (
	"testing"
)

func TestCommandTree(t *testing.T) {
	root := New()
	for _, path := range [][]string{
		{"add"},
		{"add", "note"},
		{"add", "expense"},
		{"add", "event"},
		{"add", "receipt"},
		{"record"},
		{"list"},
		{"calendar"},
		{"promote"},
		{"remind"},
		{"delete"},
		{"export"},
		{"report"},
		{"import"},
		{"serve"},
		{"mcp"},
		{"login"},
		{"logout"},
		{"whoami"},
		{"version"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil {
			t.Fatalf("Find(%v): %v", path, err)
		}
		if cmd.Name() != path[len(path)-1] {
			t.Fatalf("Find(%v) = %s", path, cmd.Name())
		}
	}
}

func TestAliases(t *testing.T) {
	root := New()
	for alias, want := range map[string]string{"ls": "list", "rm": "delete", "cal": "calendar", "migrate": "import"} {
		cmd, _, err := root.Find([]string{alias})
		if err != nil || cmd.Name() != want {
			t.Fatalf("alias %s resolved to %v (%v)", alias, cmd, err)
		}
	}
}

func TestRemindRequiresTime(t *testing.T) {
	root := New()
	root.SetArgs([]string{"remind", "abc"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error without --at, --in or --clear")
	}
}

func TestAddRequiresDescriptionUnlessInteractive(t *testing.T) {
	root := New()
	root.SetArgs([]string{"add", "note"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error without a description")
	}

	cmd, _, err := root.Find([]string{"add", "expense"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if err := cmd.Flags().Set("interactive", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cmd.Args(cmd, nil); err != nil {
		t.Fatalf("interactive add should accept no args: %v", err)
	}
}
