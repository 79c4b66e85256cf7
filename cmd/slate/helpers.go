package main

import (
	"fmt"

	"slate/internal/project"
	"slate/internal/prompt"
)

// parseContext builds a product context from the entity and product CLI
// arguments. The entity form is "asset:Characters/Hero" or
// "shot:sq010/sh020"; a bare value is an asset path.
func parseContext(entityRef, product string) (project.Context, error) {
	entity, err := project.ParseEntity(entityRef)
	if err != nil {
		return project.Context{}, err
	}
	if product == "" {
		return project.Context{}, fmt.Errorf("product name must not be empty")
	}
	return project.Context{Entity: entity, Product: product}, nil
}

// parseChoice maps a flag value to a prompt decision.
func parseChoice(value string) (prompt.Choice, error) {
	switch value {
	case "retry":
		return prompt.Retry, nil
	case "quarantine":
		return prompt.Quarantine, nil
	case "cancel":
		return prompt.Cancel, nil
	case "reset":
		return prompt.Reset, nil
	case "force-release":
		return prompt.ForceRelease, nil
	}
	return "", fmt.Errorf("unknown choice %q", value)
}
