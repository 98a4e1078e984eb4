package domain

// ViewModelKind distinguishes the full view owned by a Constraint from the
// secondary views owned by the view layer.
type ViewModelKind int

const (
	FullView ViewModelKind = iota
	TemporalView
)

func (k ViewModelKind) String() string {
	if k == FullView {
		return "full"
	}
	return "temporal"
}

// ViewModel is the document-side state of one view onto a Constraint:
// which of its racks is currently shown.
type ViewModel struct {
	id         ViewModelID
	kind       ViewModelKind
	constraint *Constraint
	shownRack  RackID
	rackShown  bool

	RackShown        Signal[RackID]
	RackHidden       Signal[struct{}]
	AboutToBeDeleted Signal[*ViewModel]
}

// NewViewModel creates a view onto c. Secondary view models must be passed to
// Constraint.RegisterViewModel to be tracked.
func NewViewModel(id ViewModelID, kind ViewModelKind, c *Constraint) *ViewModel {
	return &ViewModel{id: id, kind: kind, constraint: c}
}

func (v *ViewModel) ID() ViewModelID { return v.id }
func (v *ViewModel) Kind() ViewModelKind { return v.kind }
func (v *ViewModel) Constraint() *Constraint { return v.constraint }

// ShownRack returns the displayed rack, if any.
func (v *ViewModel) ShownRack() (RackID, bool) {
	return v.shownRack, v.rackShown
}

func (v *ViewModel) ShowRack(id RackID) {
	if v.rackShown && v.shownRack == id {
		return
	}
	v.shownRack, v.rackShown = id, true
	v.RackShown.Emit(id)
}

func (v *ViewModel) HideRack() {
	if !v.rackShown {
		return
	}
	v.shownRack, v.rackShown = 0, false
	v.RackHidden.Emit(struct{}{})
}

// OnRackRemoval hides the rack if it is the one being displayed.
func (v *ViewModel) OnRackRemoval(r *Rack) {
	if v.rackShown && v.shownRack == r.ID() {
		v.HideRack()
	}
}

// Delete announces the destruction of the view model to its constraint.
func (v *ViewModel) Delete() {
	v.AboutToBeDeleted.Emit(v)
}

// Clone copies the view state onto a view of c with the given id.
func (v *ViewModel) Clone(id ViewModelID, c *Constraint) *ViewModel {
	return &ViewModel{
		id:         id,
		kind:       v.kind,
		constraint: c,
		shownRack:  v.shownRack,
		rackShown:  v.rackShown,
	}
}
