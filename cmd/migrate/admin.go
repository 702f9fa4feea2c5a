package main

import (
	"strings"

	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
)

// validateAdmin holds create-admin flags to the same rules as registration.
func validateAdmin(name, email, password string) error {
	input := schema.RegisterInput{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	return validation.New().Validate(&input)
}
