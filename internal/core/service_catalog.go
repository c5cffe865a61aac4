package core

import (
	"context"
	"fmt"

	"obracore/pkg/domain"
)

// CreateUnit persists a measurement unit.
func (s *Service) CreateUnit(ctx context.Context, unit Unit) (Unit, Result, error) {
	var created Unit
	res, err := s.transact(ctx, "create_unit", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateUnit(unit)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateUnit mutates a unit using the provided mutator.
func (s *Service) UpdateUnit(ctx context.Context, id string, mutator func(*Unit) error) (Unit, Result, error) {
	var updated Unit
	res, err := s.transact(ctx, "update_unit", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateUnit(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteUnit removes a unit record.
func (s *Service) DeleteUnit(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_unit", func(tx domain.Transaction) error {
		return tx.DeleteUnit(id)
	}, func() string { return id })
}

// ListUnits returns all units, newest first.
func (s *Service) ListUnits(ctx context.Context) ([]Unit, error) {
	var out []Unit
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListUnits()
		return nil
	})
	return sortByCreation(out, func(u Unit) Base { return u.Base }), err
}

// GetUnit returns a unit by id.
func (s *Service) GetUnit(ctx context.Context, id string) (Unit, error) {
	var out Unit
	err := s.read(ctx, func(v domain.TransactionView) error {
		unit, ok := v.FindUnit(id)
		if !ok {
			return ErrNotFound{Entity: EntityUnit, ID: id}
		}
		out = unit
		return nil
	})
	return out, err
}

// CreateTaskCategory persists a category tree node.
func (s *Service) CreateTaskCategory(ctx context.Context, category TaskCategory) (TaskCategory, Result, error) {
	var created TaskCategory
	res, err := s.transact(ctx, "create_task_category", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTaskCategory(category)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateTaskCategory mutates a category using the provided mutator.
func (s *Service) UpdateTaskCategory(ctx context.Context, id string, mutator func(*TaskCategory) error) (TaskCategory, Result, error) {
	var updated TaskCategory
	res, err := s.transact(ctx, "update_task_category", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTaskCategory(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteTaskCategory removes a category node.
func (s *Service) DeleteTaskCategory(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_task_category", func(tx domain.Transaction) error {
		return tx.DeleteTaskCategory(id)
	}, func() string { return id })
}

// ListTaskCategories returns all category nodes, newest first.
func (s *Service) ListTaskCategories(ctx context.Context) ([]TaskCategory, error) {
	var out []TaskCategory
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListTaskCategories()
		return nil
	})
	return sortByCreation(out, func(c TaskCategory) Base { return c.Base }), err
}

// GetTaskCategory returns a category node by id.
func (s *Service) GetTaskCategory(ctx context.Context, id string) (TaskCategory, error) {
	var out TaskCategory
	err := s.read(ctx, func(v domain.TransactionView) error {
		category, ok := v.FindTaskCategory(id)
		if !ok {
			return ErrNotFound{Entity: EntityTaskCategory, ID: id}
		}
		out = category
		return nil
	})
	return out, err
}

// MoveTaskCategory re-parents a category node and assigns its sibling
// position. Moves that would introduce a cycle are rejected.
func (s *Service) MoveTaskCategory(ctx context.Context, id string, parentID *string, position int) (TaskCategory, Result, error) {
	var updated TaskCategory
	res, err := s.transact(ctx, "move_task_category", func(tx domain.Transaction) error {
		view := tx.Snapshot()
		if parentID != nil {
			if *parentID == id {
				return fmt.Errorf("task category %s cannot be its own parent", id)
			}
			ancestor := *parentID
			for ancestor != "" {
				node, ok := view.FindTaskCategory(ancestor)
				if !ok {
					return ErrNotFound{Entity: EntityTaskCategory, ID: ancestor}
				}
				if node.ID == id {
					return fmt.Errorf("moving task category %s under %s would create a cycle", id, *parentID)
				}
				if node.ParentID == nil {
					break
				}
				ancestor = *node.ParentID
			}
		}
		var err error
		updated, err = tx.UpdateTaskCategory(id, func(c *TaskCategory) error {
			c.ParentID = parentID
			c.Position = position
			return nil
		})
		return err
	}, func() string { return id })
	return updated, res, err
}

// CreateMaterial persists a material catalog entry.
func (s *Service) CreateMaterial(ctx context.Context, material Material) (Material, Result, error) {
	var created Material
	res, err := s.transact(ctx, "create_material", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateMaterial(material)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateMaterial mutates a material using the provided mutator.
func (s *Service) UpdateMaterial(ctx context.Context, id string, mutator func(*Material) error) (Material, Result, error) {
	var updated Material
	res, err := s.transact(ctx, "update_material", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateMaterial(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteMaterial removes a material record.
func (s *Service) DeleteMaterial(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_material", func(tx domain.Transaction) error {
		return tx.DeleteMaterial(id)
	}, func() string { return id })
}

// ListMaterials returns all materials, newest first.
func (s *Service) ListMaterials(ctx context.Context) ([]Material, error) {
	var out []Material
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListMaterials()
		return nil
	})
	return sortByCreation(out, func(m Material) Base { return m.Base }), err
}

// GetMaterial returns a material by id.
func (s *Service) GetMaterial(ctx context.Context, id string) (Material, error) {
	var out Material
	err := s.read(ctx, func(v domain.TransactionView) error {
		material, ok := v.FindMaterial(id)
		if !ok {
			return ErrNotFound{Entity: EntityMaterial, ID: id}
		}
		out = material
		return nil
	})
	return out, err
}

// CreateTask persists a task catalog entry.
func (s *Service) CreateTask(ctx context.Context, task Task) (Task, Result, error) {
	var created Task
	res, err := s.transact(ctx, "create_task", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateTask(task)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateTask mutates a task using the provided mutator.
func (s *Service) UpdateTask(ctx context.Context, id string, mutator func(*Task) error) (Task, Result, error) {
	var updated Task
	res, err := s.transact(ctx, "update_task", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateTask(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteTask removes a task record.
func (s *Service) DeleteTask(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_task", func(tx domain.Transaction) error {
		return tx.DeleteTask(id)
	}, func() string { return id })
}

// ListTasks returns all tasks, newest first.
func (s *Service) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListTasks()
		return nil
	})
	return sortByCreation(out, func(t Task) Base { return t.Base }), err
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	var out Task
	err := s.read(ctx, func(v domain.TransactionView) error {
		task, ok := v.FindTask(id)
		if !ok {
			return ErrNotFound{Entity: EntityTask, ID: id}
		}
		out = task
		return nil
	})
	return out, err
}

// CreateActivity persists an activity catalog entry.
func (s *Service) CreateActivity(ctx context.Context, activity Activity) (Activity, Result, error) {
	var created Activity
	res, err := s.transact(ctx, "create_activity", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateActivity(activity)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateActivity mutates an activity using the provided mutator.
func (s *Service) UpdateActivity(ctx context.Context, id string, mutator func(*Activity) error) (Activity, Result, error) {
	var updated Activity
	res, err := s.transact(ctx, "update_activity", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateActivity(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteActivity removes an activity record.
func (s *Service) DeleteActivity(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_activity", func(tx domain.Transaction) error {
		return tx.DeleteActivity(id)
	}, func() string { return id })
}

// ListActivities returns all activities, newest first.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	var out []Activity
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListActivities()
		return nil
	})
	return sortByCreation(out, func(a Activity) Base { return a.Base }), err
}

// GetActivity returns an activity by id.
func (s *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	var out Activity
	err := s.read(ctx, func(v domain.TransactionView) error {
		activity, ok := v.FindActivity(id)
		if !ok {
			return ErrNotFound{Entity: EntityActivity, ID: id}
		}
		out = activity
		return nil
	})
	return out, err
}

// CreateAction persists an action catalog entry.
func (s *Service) CreateAction(ctx context.Context, action Action) (Action, Result, error) {
	var created Action
	res, err := s.transact(ctx, "create_action", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateAction(action)
		return err
	}, func() string { return created.ID })
	return created, res, err
}

// UpdateAction mutates an action using the provided mutator.
func (s *Service) UpdateAction(ctx context.Context, id string, mutator func(*Action) error) (Action, Result, error) {
	var updated Action
	res, err := s.transact(ctx, "update_action", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateAction(id, mutator)
		return err
	}, func() string { return id })
	return updated, res, err
}

// DeleteAction removes an action record.
func (s *Service) DeleteAction(ctx context.Context, id string) (Result, error) {
	return s.transact(ctx, "delete_action", func(tx domain.Transaction) error {
		return tx.DeleteAction(id)
	}, func() string { return id })
}

// ListActions returns all actions, newest first.
func (s *Service) ListActions(ctx context.Context) ([]Action, error) {
	var out []Action
	err := s.read(ctx, func(v domain.TransactionView) error {
		out = v.ListActions()
		return nil
	})
	return sortByCreation(out, func(a Action) Base { return a.Base }), err
}

// GetAction returns an action by id.
func (s *Service) GetAction(ctx context.Context, id string) (Action, error) {
	var out Action
	err := s.read(ctx, func(v domain.TransactionView) error {
		action, ok := v.FindAction(id)
		if !ok {
			return ErrNotFound{Entity: EntityAction, ID: id}
		}
		out = action
		return nil
	})
	return out, err
}
