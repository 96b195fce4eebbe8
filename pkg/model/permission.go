package model

// CategoryPermission is the level a participant holds on a category. Levels are ordered
// view < edit < manage.
type CategoryPermission string

const (
	CategoryView   CategoryPermission = "view"
	CategoryEdit   CategoryPermission = "edit"
	CategoryManage CategoryPermission = "manage"
)

func (p CategoryPermission) rank() int {
	switch p {
	case CategoryView:
		return 1
	case CategoryEdit:
		return 2
	case CategoryManage:
		return 3
	default:
		return 0
	}
}

// Satisfies returns true if p is at least required. Unknown levels never satisfy anything.
func (p CategoryPermission) Satisfies(required CategoryPermission) bool {
	return p.rank() > 0 && p.rank() >= required.rank()
}

func (p CategoryPermission) Valid() bool {
	return p.rank() > 0
}

// EventPermission is the level a participant holds on an event. Levels are ordered
// view < edit < organize.
type EventPermission string

const (
	EventView     EventPermission = "view"
	EventEdit     EventPermission = "edit"
	EventOrganize EventPermission = "organize"
)

func (p EventPermission) rank() int {
	switch p {
	case EventView:
		return 1
	case EventEdit:
		return 2
	case EventOrganize:
		return 3
	default:
		return 0
	}
}

// Satisfies returns true if p is at least required. Unknown levels never satisfy anything.
func (p EventPermission) Satisfies(required EventPermission) bool {
	return p.rank() > 0 && p.rank() >= required.rank()
}

func (p EventPermission) Valid() bool {
	return p.rank() > 0
}
