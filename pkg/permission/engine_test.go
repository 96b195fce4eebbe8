package permission_test

import (
	"testing"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/dhis2-sre/im-calendar/pkg/permission"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategoryPermission(t *testing.T) {
	owner := model.User{ID: uuid.New()}
	viewer := model.User{ID: uuid.New()}
	editor := model.User{ID: uuid.New()}
	stranger := model.User{ID: uuid.New()}
	superuser := model.User{ID: uuid.New(), IsSuperuser: true}

	category := &model.Category{
		ID:      uuid.New(),
		OwnerID: owner.ID,
		Participants: []model.CategoryParticipant{
			{UserID: viewer.ID, Permission: model.CategoryView},
			{UserID: editor.ID, Permission: model.CategoryEdit},
		},
	}

	tests := map[string]struct {
		actor    model.User
		required model.CategoryPermission
		want     bool
	}{
		"OwnerWithoutParticipantRow": {owner, model.CategoryManage, true},
		"Superuser":                  {superuser, model.CategoryManage, true},
		"ViewerCanView":              {viewer, model.CategoryView, true},
		"ViewerCanNotEdit":           {viewer, model.CategoryEdit, false},
		"EditorCanEdit":              {editor, model.CategoryEdit, true},
		"EditorCanNotManage":         {editor, model.CategoryManage, false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			allowed, err := permission.ResolveCategoryPermission(test.actor, category, test.required)

			require.NoError(t, err)
			assert.Equal(t, test.want, allowed)
		})
	}

	t.Run("NotAParticipant", func(t *testing.T) {
		allowed, err := permission.ResolveCategoryPermission(stranger, category, model.CategoryView)

		assert.False(t, allowed)
		assert.True(t, errdef.IsNotAParticipant(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		allowed, err := permission.ResolveCategoryPermission(owner, nil, model.CategoryView)

		assert.False(t, allowed)
		assert.True(t, errdef.IsNotFound(err))
	})
}

func TestOwnerAlwaysManagesCategory(t *testing.T) {
	for range 20 {
		owner := model.User{ID: uuid.New()}
		category := &model.Category{ID: uuid.New(), OwnerID: owner.ID}

		allowed, err := permission.ResolveCategoryPermission(owner, category, model.CategoryManage)

		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestResolveEventPermission(t *testing.T) {
	owner := model.User{ID: uuid.New()}
	categoryManager := model.User{ID: uuid.New()}
	categoryEditor := model.User{ID: uuid.New()}
	categoryViewer := model.User{ID: uuid.New()}
	creator := model.User{ID: uuid.New()}
	eventEditor := model.User{ID: uuid.New()}
	eventOrganizer := model.User{ID: uuid.New()}
	eventViewer := model.User{ID: uuid.New()}
	superuser := model.User{ID: uuid.New(), IsSuperuser: true}

	category := &model.Category{
		ID:      uuid.New(),
		OwnerID: owner.ID,
		Participants: []model.CategoryParticipant{
			{UserID: categoryManager.ID, Permission: model.CategoryManage},
			{UserID: categoryEditor.ID, Permission: model.CategoryEdit},
			{UserID: categoryViewer.ID, Permission: model.CategoryView},
		},
	}
	event := &model.Event{
		ID:         uuid.New(),
		CreatorID:  creator.ID,
		Categories: []model.Category{*category},
		Participants: []model.EventParticipant{
			{UserID: eventViewer.ID, Permission: model.EventView},
			{UserID: eventEditor.ID, Permission: model.EventEdit},
			{UserID: eventOrganizer.ID, Permission: model.EventOrganize},
		},
	}

	tests := map[string]struct {
		actor    model.User
		required model.EventPermission
		want     bool
	}{
		"Superuser":                          {superuser, model.EventOrganize, true},
		"CreatorWithoutParticipantRow":       {creator, model.EventOrganize, true},
		"CategoryOwnerInheritsOrganize":      {owner, model.EventOrganize, true},
		"CategoryManagerInheritsEdit":        {categoryManager, model.EventEdit, true},
		"CategoryManagerInheritsOrganize":    {categoryManager, model.EventOrganize, true},
		"CategoryEditorInheritsView":         {categoryEditor, model.EventView, true},
		"CategoryEditorCanNotEditOthers":     {categoryEditor, model.EventEdit, false},
		"CategoryEditorCanNotOrganizeOthers": {categoryEditor, model.EventOrganize, false},
		"CategoryViewerInheritsView":         {categoryViewer, model.EventView, true},
		"CategoryViewerCanNotEdit":           {categoryViewer, model.EventEdit, false},
		"EventViewerCanView":                 {eventViewer, model.EventView, true},
		"EventViewerCanNotEdit":              {eventViewer, model.EventEdit, false},
		"EventEditorCanEdit":                 {eventEditor, model.EventEdit, true},
		"EventEditorCanNotOrganize":          {eventEditor, model.EventOrganize, false},
		"EventOrganizerCanOrganize":          {eventOrganizer, model.EventOrganize, true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			allowed, err := permission.ResolveEventPermission(test.actor, event, category, test.required)

			require.NoError(t, err)
			assert.Equal(t, test.want, allowed)
		})
	}

	t.Run("NotFound", func(t *testing.T) {
		allowed, err := permission.ResolveEventPermission(creator, nil, category, model.EventView)

		assert.False(t, allowed)
		assert.True(t, errdef.IsNotFound(err))
	})

	t.Run("WithoutCategory", func(t *testing.T) {
		allowed, err := permission.ResolveEventPermission(eventEditor, event, nil, model.EventEdit)

		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestEventEditorCanOnlyOrganizeOwnEvents(t *testing.T) {
	editor := model.User{ID: uuid.New()}
	participant := model.EventParticipant{UserID: editor.ID, Permission: model.EventEdit}

	someoneElses := &model.Event{ID: uuid.New(), CreatorID: uuid.New(), Participants: []model.EventParticipant{participant}}
	allowed, err := permission.ResolveEventPermission(editor, someoneElses, nil, model.EventOrganize)
	require.NoError(t, err)
	assert.False(t, allowed)

	own := &model.Event{ID: uuid.New(), CreatorID: editor.ID, Participants: []model.EventParticipant{participant}}
	allowed, err = permission.ResolveEventPermission(editor, own, nil, model.EventOrganize)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestStrangerViewingEventIsNotAParticipant(t *testing.T) {
	owner := model.User{ID: uuid.New()}
	a := model.User{ID: uuid.New()}
	b := model.User{ID: uuid.New()}
	category := &model.Category{
		ID:           uuid.New(),
		OwnerID:      owner.ID,
		Participants: []model.CategoryParticipant{{UserID: a.ID, Permission: model.CategoryEdit}},
	}
	event := &model.Event{
		ID:           uuid.New(),
		CreatorID:    a.ID,
		Participants: []model.EventParticipant{{UserID: a.ID, IsCreator: true, Permission: model.EventOrganize}},
	}

	allowed, err := permission.ResolveEventPermission(b, event, category, model.EventView)

	assert.False(t, allowed)
	assert.True(t, errdef.IsNotAParticipant(err))
	assert.False(t, errdef.IsInsufficientPermission(err))
}

func TestRequireEventPermission(t *testing.T) {
	viewer := model.User{ID: uuid.New()}
	event := &model.Event{
		ID:           uuid.New(),
		CreatorID:    uuid.New(),
		Participants: []model.EventParticipant{{UserID: viewer.ID, Permission: model.EventView}},
	}

	require.NoError(t, permission.RequireEventPermission(viewer, event, nil, model.EventView))

	err := permission.RequireEventPermission(viewer, event, nil, model.EventEdit)
	assert.True(t, errdef.IsInsufficientPermission(err))

	err = permission.RequireEventPermission(model.User{ID: uuid.New()}, event, nil, model.EventView)
	assert.True(t, errdef.IsNotAParticipant(err))
}

func TestRequireCategoryPermission(t *testing.T) {
	viewer := model.User{ID: uuid.New()}
	category := &model.Category{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		Participants: []model.CategoryParticipant{{UserID: viewer.ID, Permission: model.CategoryView}},
	}

	require.NoError(t, permission.RequireCategoryPermission(viewer, category, model.CategoryView))

	err := permission.RequireCategoryPermission(viewer, category, model.CategoryManage)
	assert.True(t, errdef.IsInsufficientPermission(err))
}
