package generator

import (
	"git.home.luguber.info/inful/docgen/internal/collab"
	"git.home.luguber.info/inful/docgen/internal/collab/memory"
	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/placeholder"
)

// MemorySet builds the default in-memory collaborator set seeded from
// config fixtures. The CLI and the test suite run against this unless a
// real collaborator set is injected.
func MemorySet(fx config.Fixtures) *collab.Set {
	drive := memory.NewDrive()
	for _, d := range fx.Destinations {
		drive.AddDestination(collab.Destination{ID: d.ID, Name: d.Name, Path: d.Path})
	}
	for _, t := range fx.Templates {
		tpl := collab.Template{ID: t.ID, Name: t.Name}
		if t.Kind == "spreadsheet" {
			drive.AddSheetTemplate(tpl, t.Sheets)
		} else {
			drive.AddTemplate(tpl, t.Body)
		}
	}

	classes := memory.NewClassRegistry()
	for _, c := range fx.Classes {
		classes.Add(collab.Class{
			Code:                 c.Code,
			Name:                 c.Name,
			CoordinatorEmails:    c.Coordinators,
			TutorEmails:          c.Tutors,
			SubjectTeacherEmails: c.SubjectTeachers,
		})
	}

	staff := memory.NewStaffRegistry()
	for _, s := range fx.Staff {
		staff.Add(collab.Staff{Code: s.Code, Name: s.Name, Email: s.Email})
	}

	return &collab.Set{
		Templates:    drive,
		Store:        drive,
		Destinations: drive,
		Resolver:     placeholder.NewResolver(drive),
		Permissions:  memory.NewPermissionService(),
		Classes:      classes,
		Staff:        staff,
		Artifacts:    memory.NewArtifactRegistry(),
	}
}
