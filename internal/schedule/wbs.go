package schedule

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// GenerateWBSCode derives a WBS code from a parent code and a 1-based
// position among its siblings: a root element (parentCode == "") gets its
// position as a bare code ("1", "2", …); a child appends its position to
// the parent's code ("1.1", "1.2", …). Ported from the original's
// generate_wbs_code.
func GenerateWBSCode(parentCode string, position int) string {
	if parentCode == "" {
		return fmt.Sprintf("%d", position)
	}
	return fmt.Sprintf("%s.%d", parentCode, position)
}

// CreateWBSElement inserts a WBS element, deriving level_number from the
// parent (root = 1) when a parent is given.
func (e *Engine) CreateWBSElement(ctx context.Context, w domain.WBSElement) (domain.WBSElement, error) {
	if w.ParentID != "" {
		parent, err := e.store.GetWBSElement(ctx, w.ParentID)
		if err != nil {
			return domain.WBSElement{}, err
		}
		w.LevelNumber = parent.LevelNumber + 1
	} else if w.LevelNumber == 0 {
		w.LevelNumber = 1
	}
	return e.store.CreateWBSElement(ctx, w)
}

// MoveWBSElement relocates id under newParentID at newSortOrder: refuses
// cycles, shifts sibling sort_order on both sides of the move, and
// recomputes level_number for the moved subtree.
func (e *Engine) MoveWBSElement(ctx context.Context, id, newParentID string, newSortOrder int) error {
	elements, err := e.allForProjectOf(ctx, id)
	if err != nil {
		return err
	}
	byID := indexByID(elements)

	moved, ok := byID[id]
	if !ok {
		return apperr.NotFound("wbs_element", id)
	}

	if newParentID != "" {
		if err := refuseCycle(byID, id, newParentID); err != nil {
			return err
		}
	}

	oldParentID := moved.ParentID
	for _, sibling := range byID {
		if sibling.ID == id {
			continue
		}
		switch {
		case sibling.ParentID == oldParentID && sibling.SortOrder > moved.SortOrder:
			sibling.SortOrder--
			if _, err := e.store.UpdateWBSElement(ctx, sibling); err != nil {
				return err
			}
		case sibling.ParentID == newParentID && sibling.SortOrder >= newSortOrder:
			sibling.SortOrder++
			if _, err := e.store.UpdateWBSElement(ctx, sibling); err != nil {
				return err
			}
		}
	}

	moved.ParentID = newParentID
	moved.SortOrder = newSortOrder
	newLevel := 1
	if newParentID != "" {
		newLevel = byID[newParentID].LevelNumber + 1
	}
	levelDelta := newLevel - moved.LevelNumber
	moved.LevelNumber = newLevel
	if _, err := e.store.UpdateWBSElement(ctx, moved); err != nil {
		return err
	}

	if levelDelta != 0 {
		return e.recomputeSubtreeLevels(ctx, byID, id, levelDelta)
	}
	return nil
}

func (e *Engine) recomputeSubtreeLevels(ctx context.Context, byID map[string]domain.WBSElement, rootID string, delta int) error {
	children := map[string][]string{}
	for _, el := range byID {
		children[el.ParentID] = append(children[el.ParentID], el.ID)
	}
	var walk func(id string) error
	walk = func(id string) error {
		for _, childID := range children[id] {
			child := byID[childID]
			child.LevelNumber += delta
			if _, err := e.store.UpdateWBSElement(ctx, child); err != nil {
				return err
			}
			byID[childID] = child
			if err := walk(childID); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(rootID)
}

func refuseCycle(byID map[string]domain.WBSElement, movingID, newParentID string) error {
	cursor := newParentID
	for cursor != "" {
		if cursor == movingID {
			return apperr.Conflict("move would introduce a cycle in the WBS hierarchy")
		}
		parent, ok := byID[cursor]
		if !ok {
			break
		}
		cursor = parent.ParentID
	}
	return nil
}

func (e *Engine) allForProjectOf(ctx context.Context, elementID string) ([]domain.WBSElement, error) {
	el, err := e.store.GetWBSElement(ctx, elementID)
	if err != nil {
		return nil, err
	}
	return e.store.ListWBSElements(ctx, el.ProjectID)
}

func indexByID(elements []domain.WBSElement) map[string]domain.WBSElement {
	out := make(map[string]domain.WBSElement, len(elements))
	for _, el := range elements {
		out[el.ID] = el
	}
	return out
}

// WorkPackageManagerAssignment is one (element, manager) pair submitted to
// BulkAssignWorkPackageManagers.
type WorkPackageManagerAssignment struct {
	WBSElementID string
	ManagerID    string
}

// WorkPackageManagerAssignmentResult reports the outcome of a single
// assignment within a bulk call.
type WorkPackageManagerAssignmentResult struct {
	WBSElementID string
	ManagerID    string
	Success      bool
	Error        string
}

// BulkAssignResult summarizes a BulkAssignWorkPackageManagers call.
type BulkAssignResult struct {
	TotalAssignments      int
	SuccessfulAssignments int
	FailedAssignments     int
	Results               []WorkPackageManagerAssignmentResult
}

// BulkAssignWorkPackageManagers assigns work_package_manager across many
// WBS elements in one call, ported from the original's
// bulk_assign_work_package_managers: each assignment is attempted
// independently, a failure on one element (not found, store error) is
// recorded in Results rather than aborting the remaining assignments.
func (e *Engine) BulkAssignWorkPackageManagers(ctx context.Context, assignments []WorkPackageManagerAssignment) (BulkAssignResult, error) {
	result := BulkAssignResult{
		TotalAssignments: len(assignments),
		Results:          make([]WorkPackageManagerAssignmentResult, 0, len(assignments)),
	}

	for _, a := range assignments {
		if err := e.assignWorkPackageManager(ctx, a.WBSElementID, a.ManagerID); err != nil {
			result.FailedAssignments++
			result.Results = append(result.Results, WorkPackageManagerAssignmentResult{
				WBSElementID: a.WBSElementID,
				ManagerID:    a.ManagerID,
				Success:      false,
				Error:        err.Error(),
			})
			continue
		}
		result.SuccessfulAssignments++
		result.Results = append(result.Results, WorkPackageManagerAssignmentResult{
			WBSElementID: a.WBSElementID,
			ManagerID:    a.ManagerID,
			Success:      true,
		})
	}

	return result, nil
}

func (e *Engine) assignWorkPackageManager(ctx context.Context, elementID, managerID string) error {
	el, err := e.store.GetWBSElement(ctx, elementID)
	if err != nil {
		return err
	}
	el.WorkPackageManager = managerID
	_, err = e.store.UpdateWBSElement(ctx, el)
	return err
}

// ValidationIssue is one finding from ValidateStructure; Warning issues do
// not indicate structural corruption, only an incomplete work package.
type ValidationIssue struct {
	Kind      string
	ElementID string
	Warning   bool
}

// ValidateStructure reports orphan references, duplicate codes, cycles,
// inconsistent levels, and (as warnings) leaves missing a work-package
// manager or a deliverable description. Every non-warning finding is
// additionally folded into a combined error via go-multierror, since a
// caller invoking this as a gate (rather than a report) wants one error
// that names every structural defect at once.
func (e *Engine) ValidateStructure(ctx context.Context, projectID string) ([]ValidationIssue, error) {
	elements, err := e.store.ListWBSElements(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byID := indexByID(elements)

	var issues []ValidationIssue
	var combined *multierror.Error

	seenCodes := make(map[string][]string) // code -> element ids
	children := make(map[string][]string)

	for _, el := range elements {
		seenCodes[el.Code] = append(seenCodes[el.Code], el.ID)
		children[el.ParentID] = append(children[el.ParentID], el.ID)

		if el.ParentID != "" {
			if _, ok := byID[el.ParentID]; !ok {
				issues = append(issues, ValidationIssue{Kind: "orphan_reference", ElementID: el.ID})
				combined = multierror.Append(combined, fmt.Errorf("element %s references missing parent %s", el.ID, el.ParentID))
			}
		}

		expectedLevel := 1
		if el.ParentID != "" {
			if parent, ok := byID[el.ParentID]; ok {
				expectedLevel = parent.LevelNumber + 1
			}
		}
		if el.ParentID != "" {
			if _, ok := byID[el.ParentID]; ok && el.LevelNumber != expectedLevel {
				issues = append(issues, ValidationIssue{Kind: "inconsistent_level", ElementID: el.ID})
				combined = multierror.Append(combined, fmt.Errorf("element %s has level %d, expected %d", el.ID, el.LevelNumber, expectedLevel))
			}
		}

		if len(children[el.ID]) == 0 {
			if el.WorkPackageManager == "" {
				issues = append(issues, ValidationIssue{Kind: "missing_work_package_manager", ElementID: el.ID, Warning: true})
			}
			if el.DeliverableDescription == "" {
				issues = append(issues, ValidationIssue{Kind: "missing_deliverable", ElementID: el.ID, Warning: true})
			}
		}
	}

	for code, ids := range seenCodes {
		if len(ids) > 1 {
			for _, id := range ids {
				issues = append(issues, ValidationIssue{Kind: "duplicate_code", ElementID: id})
			}
			combined = multierror.Append(combined, fmt.Errorf("duplicate WBS code %q on elements %v", code, ids))
		}
	}

	for _, el := range elements {
		if hasCycle(byID, el.ID) {
			issues = append(issues, ValidationIssue{Kind: "cycle", ElementID: el.ID})
			combined = multierror.Append(combined, fmt.Errorf("element %s participates in a parent-chain cycle", el.ID))
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].ElementID < issues[j].ElementID })

	if combined != nil {
		return issues, combined.ErrorOrNil()
	}
	return issues, nil
}

func hasCycle(byID map[string]domain.WBSElement, startID string) bool {
	visited := make(map[string]struct{})
	cursor := startID
	for {
		el, ok := byID[cursor]
		if !ok || el.ParentID == "" {
			return false
		}
		if _, seen := visited[el.ParentID]; seen {
			return true
		}
		visited[cursor] = struct{}{}
		if el.ParentID == startID {
			return true
		}
		cursor = el.ParentID
	}
}
