package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/adminforge/adminforge/internal/admin/adapter"
	"github.com/adminforge/adminforge/internal/admin/descriptor"
	"github.com/adminforge/adminforge/internal/db/models"
)

// builtinDescriptors configures the administration of the runtime's own
// models: user accounts and groups.
func builtinDescriptors(db *gorm.DB) []*descriptor.Descriptor {
	users := &descriptor.Descriptor{
		AppLabel:  "auth",
		ModelSlug: "user",
		Label:     "Users",
		Resource: adapter.NewGormResource(db, models.User{}.TableName(), "id",
			[]adapter.FieldMeta{
				{Name: "id", Kind: adapter.KindInt},
				{Name: "username", Kind: adapter.KindString, Required: true},
				{Name: "email", Kind: adapter.KindString, Required: true},
				{Name: "first_name", Kind: adapter.KindString},
				{Name: "last_name", Kind: adapter.KindString},
				{Name: "active", Kind: adapter.KindBool},
				{Name: "staff", Kind: adapter.KindBool},
				{Name: "superuser", Kind: adapter.KindBool},
				{Name: "created_at", Kind: adapter.KindTime},
			},
			func() any { return &models.User{} },
		),
		ListFields:   []string{"id", "username", "email", "active", "staff", "superuser"},
		FormFields:   []string{"username", "email", "first_name", "last_name", "active", "staff", "superuser"},
		SearchFields: []string{"username", "email", "first_name", "last_name"},
		Hooks: descriptor.Hooks{
			// only superusers see and touch superuser accounts
			RowLevel: func(qs adapter.QuerySet, user *models.User) adapter.QuerySet {
				if user != nil && user.Superuser {
					return qs
				}

				return qs.Filter(adapter.Filter{Field: "superuser", Op: adapter.OpEq, Value: false})
			},
		},
	}

	mustAddAction(users, descriptor.DeleteSelected())
	mustAddAction(users, descriptor.ActionSpec{
		Name:         "activate_selected",
		Label:        "Activate selected users",
		RequiredPerm: models.ActionChange,
		Apply: func(qs adapter.QuerySet, _ map[string]any) (int64, error) {
			return qs.Update(map[string]any{"active": true})
		},
	})
	mustAddAction(users, descriptor.ActionSpec{
		Name:         "deactivate_selected",
		Label:        "Deactivate selected users",
		RequiredPerm: models.ActionChange,
		Apply: func(qs adapter.QuerySet, _ map[string]any) (int64, error) {
			return qs.Update(map[string]any{"active": false})
		},
	})

	groups := &descriptor.Descriptor{
		AppLabel:  "auth",
		ModelSlug: "group",
		Label:     "Groups",
		Resource: adapter.NewGormResource(db, models.Group{}.TableName(), "id",
			[]adapter.FieldMeta{
				{Name: "id", Kind: adapter.KindInt},
				{Name: "name", Kind: adapter.KindString, Required: true},
				{Name: "description", Kind: adapter.KindString},
				{Name: "created_at", Kind: adapter.KindTime},
			},
			func() any { return &models.Group{} },
		),
		ListFields:   []string{"id", "name", "description"},
		FormFields:   []string{"name", "description"},
		SearchFields: []string{"name", "description"},
	}

	mustAddAction(groups, descriptor.DeleteSelected())

	return []*descriptor.Descriptor{users, groups}
}

func mustAddAction(d *descriptor.Descriptor, spec descriptor.ActionSpec) {
	if err := d.AddAction(spec); err != nil {
		log.Fatal().Err(err).Str("content_type", d.DottedName()).Str("action", spec.Name).
			Msg("failed to add action")
	}
}
