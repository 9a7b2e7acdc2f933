package app

// Ownership is the three-way outcome of walking a resource's ownership chain.
// NotFound and Denied stay distinguishable here; each endpoint decides whether
// a wrong owner leaks existence (403) or folds into 404.
type Ownership int

const (
	OwnershipNotFound Ownership = iota
	OwnershipDenied
	OwnershipOK
)

type ownerLookup interface {
	OwnerOf(id uint) (ownerID uint, found bool, err error)
}

type OwnershipValidator struct {
	workspaces  WorkspaceStore
	datasets    ownerLookup
	mlModels    ownerLookup
	nluModels   ownerLookup
	annotations ownerLookup
	chat        ChatStore
}

func NewOwnershipValidator(
	workspaces WorkspaceStore,
	datasets DatasetStore,
	mlModels MLModelStore,
	nluModels NLUModelStore,
	annotations AnnotationStore,
	chat ChatStore,
) *OwnershipValidator {
	return &OwnershipValidator{
		workspaces:  workspaces,
		datasets:    datasets,
		mlModels:    mlModels,
		nluModels:   nluModels,
		annotations: annotations,
		chat:        chat,
	}
}

func (v *OwnershipValidator) Workspace(id, userID uint) (Ownership, error) {
	workspace, err := v.workspaces.GetByID(id)
	if err != nil {
		return OwnershipNotFound, err
	}
	if workspace == nil {
		return OwnershipNotFound, nil
	}
	if workspace.UserID != userID {
		return OwnershipDenied, nil
	}
	return OwnershipOK, nil
}

func (v *OwnershipValidator) Dataset(id, userID uint) (Ownership, error) {
	return check(v.datasets, id, userID)
}

func (v *OwnershipValidator) MLModel(id, userID uint) (Ownership, error) {
	return check(v.mlModels, id, userID)
}

func (v *OwnershipValidator) NLUModel(id, userID uint) (Ownership, error) {
	return check(v.nluModels, id, userID)
}

func (v *OwnershipValidator) Annotation(id, userID uint) (Ownership, error) {
	return check(v.annotations, id, userID)
}

func (v *OwnershipValidator) ChatSession(id, userID uint) (Ownership, error) {
	ownerID, found, err := v.chat.SessionOwnerOf(id)
	if err != nil {
		return OwnershipNotFound, err
	}
	return compare(ownerID, userID, found), nil
}

func check(lookup ownerLookup, id, userID uint) (Ownership, error) {
	ownerID, found, err := lookup.OwnerOf(id)
	if err != nil {
		return OwnershipNotFound, err
	}
	return compare(ownerID, userID, found), nil
}

func compare(ownerID, userID uint, found bool) Ownership {
	if !found {
		return OwnershipNotFound
	}
	if ownerID != userID {
		return OwnershipDenied
	}
	return OwnershipOK
}

// foldToNotFound implements the by-id leaf policy: a wrong owner is reported
// as not found so existence is not leaked.
func foldToNotFound(o Ownership) error {
	if o == OwnershipOK {
		return nil
	}
	return ErrNotFound
}

// scoped implements the parent-scoped policy: a missing parent is 404 and a
// wrong owner is 403.
func scoped(o Ownership) error {
	switch o {
	case OwnershipNotFound:
		return ErrNotFound
	case OwnershipDenied:
		return ErrForbidden
	default:
		return nil
	}
}
