package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestCreateWBSElementDerivesLevel(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	root, err := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "root", ProjectID: "p1", Code: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, root.LevelNumber)

	child, err := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "child", ProjectID: "p1", ParentID: "root", Code: "1.1"})
	require.NoError(t, err)
	assert.Equal(t, 2, child.LevelNumber)
}

func TestMoveWBSElementRefusesCycle(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	root, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "root", ProjectID: "p1", Code: "1"})
	child, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "child", ProjectID: "p1", ParentID: root.ID, Code: "1.1"})

	err := eng.MoveWBSElement(ctx, root.ID, child.ID, 0)
	require.Error(t, err)
}

func TestMoveWBSElementRecomputesLevel(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	root1, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "root1", ProjectID: "p1", Code: "1"})
	root2, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "root2", ProjectID: "p1", Code: "2"})
	child, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "child", ProjectID: "p1", ParentID: root1.ID, Code: "1.1"})
	grandchild, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "gc", ProjectID: "p1", ParentID: child.ID, Code: "1.1.1"})

	require.NoError(t, eng.MoveWBSElement(ctx, child.ID, root2.ID, 0))

	movedChild, err := ms.GetWBSElement(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, movedChild.LevelNumber)

	movedGrandchild, err := ms.GetWBSElement(ctx, grandchild.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, movedGrandchild.LevelNumber)
}

func TestValidateStructureReportsOrphanAndDuplicateCode(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	_, err := ms.CreateWBSElement(ctx, domain.WBSElement{ID: "orphan", ProjectID: "p1", ParentID: "missing", Code: "1.1", LevelNumber: 2})
	require.NoError(t, err)
	_, err = ms.CreateWBSElement(ctx, domain.WBSElement{ID: "dup1", ProjectID: "p1", Code: "2", LevelNumber: 1})
	require.NoError(t, err)
	_, err = ms.CreateWBSElement(ctx, domain.WBSElement{ID: "dup2", ProjectID: "p1", Code: "2", LevelNumber: 1})
	require.NoError(t, err)

	issues, err := eng.ValidateStructure(ctx, "p1")
	require.Error(t, err, "a structural defect must surface as a combined error, not just a report")

	var kinds []string
	for _, issue := range issues {
		kinds = append(kinds, issue.Kind)
	}
	assert.Contains(t, kinds, "orphan_reference")
	assert.Contains(t, kinds, "duplicate_code")
}

func TestValidateStructureWarnsOnIncompleteLeaf(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	_, err := ms.CreateWBSElement(ctx, domain.WBSElement{ID: "leaf", ProjectID: "p1", Code: "1", LevelNumber: 1})
	require.NoError(t, err)

	issues, err := eng.ValidateStructure(ctx, "p1")
	require.NoError(t, err, "warnings alone must not produce a combined error")

	var warnings int
	for _, issue := range issues {
		if issue.Warning {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings) // missing work-package manager + missing deliverable
}

func TestValidateStructureCleanTreeHasNoIssues(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	_, err := ms.CreateWBSElement(ctx, domain.WBSElement{
		ID: "leaf", ProjectID: "p1", Code: "1", LevelNumber: 1,
		WorkPackageManager: "EMP001", DeliverableDescription: "Final report",
	})
	require.NoError(t, err)

	issues, err := eng.ValidateStructure(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestGenerateWBSCode(t *testing.T) {
	assert.Equal(t, "1", GenerateWBSCode("", 1))
	assert.Equal(t, "2", GenerateWBSCode("", 2))
	assert.Equal(t, "1.1", GenerateWBSCode("1", 1))
	assert.Equal(t, "1.2", GenerateWBSCode("1", 2))
	assert.Equal(t, "1.2.1", GenerateWBSCode("1.2", 1))
}

func TestBulkAssignWorkPackageManagers(t *testing.T) {
	ms := memory.New()
	eng := New(ms)
	ctx := context.Background()

	leaf1, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "leaf1", ProjectID: "p1", Code: "1"})
	leaf2, _ := eng.CreateWBSElement(ctx, domain.WBSElement{ID: "leaf2", ProjectID: "p1", Code: "2"})

	result, err := eng.BulkAssignWorkPackageManagers(ctx, []WorkPackageManagerAssignment{
		{WBSElementID: leaf1.ID, ManagerID: "EMP001"},
		{WBSElementID: leaf2.ID, ManagerID: "EMP002"},
		{WBSElementID: "missing", ManagerID: "EMP003"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalAssignments)
	assert.Equal(t, 2, result.SuccessfulAssignments)
	assert.Equal(t, 1, result.FailedAssignments)
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[2].Success)
	assert.NotEmpty(t, result.Results[2].Error)

	updated, err := ms.GetWBSElement(ctx, leaf1.ID)
	require.NoError(t, err)
	assert.Equal(t, "EMP001", updated.WorkPackageManager)
}
