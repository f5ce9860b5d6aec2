// Package worktype splits composite work type codes such as "glenne_vedpakking"
// into a coarse group ("glenne") and a project label ("vedpakking").
package worktype

import "strings"

const separator = "_"

// Group returns the text before the first underscore, or the whole code when there is none
func Group(workType string) string {
	group, _ := Split(workType)
	return group
}

// Project returns the tokens after the first underscore joined with spaces,
// or the whole code when there is no underscore
func Project(workType string) string {
	_, project := Split(workType)
	return project
}

// Split returns both group and project
func Split(workType string) (group, project string) {
	if workType == "" {
		return "", ""
	}
	head, tail, found := strings.Cut(workType, separator)
	if !found {
		return workType, workType
	}
	return head, strings.Join(strings.Split(tail, separator), " ")
}
