package mapping

import "testing"

func TestUserMap(t *testing.T) {
	users := NewUserMap(map[string]string{
		"OctoCat": "octo@corp.example",
		"hubot":   "hubot@corp.example",
	})

	if got, ok := users.Lookup("octocat"); !ok || got != "octo@corp.example" {
		t.Errorf("Lookup(octocat) = %q, %v", got, ok)
	}
	if got, ok := users.Lookup("OCTOCAT"); !ok || got != "octo@corp.example" {
		t.Errorf("Lookup(OCTOCAT) = %q, %v", got, ok)
	}
	if _, ok := users.Lookup("nobody"); ok {
		t.Error("Lookup(nobody) found unexpected mapping")
	}

	// First mapped assignee wins, unmapped logins are skipped.
	if got, ok := users.FirstMapped([]string{"nobody", "hubot", "octocat"}); !ok || got != "hubot@corp.example" {
		t.Errorf("FirstMapped() = %q, %v, want hubot@corp.example", got, ok)
	}
	if _, ok := users.FirstMapped([]string{"nobody"}); ok {
		t.Error("FirstMapped() matched with no mapped logins")
	}

	users.Add("newuser", "new@corp.example")
	if _, ok := users.Lookup("NewUser"); !ok {
		t.Error("Add() mapping not found")
	}
	users.Remove("NEWUSER")
	if _, ok := users.Lookup("newuser"); ok {
		t.Error("Remove() mapping still present")
	}
	if users.Len() != 2 {
		t.Errorf("Len() = %d, want 2", users.Len())
	}
}
