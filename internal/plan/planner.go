package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codeloom/codeloom/internal/config"
	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/metrics"
	"github.com/codeloom/codeloom/internal/summary"
)

// Planner maps a structured document summary to an ExecutionPlan and
// persists plans by id.
type Planner struct {
	cfg     config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	store   *Store
}

// NewPlanner creates a Planner. The metrics argument may be nil.
func NewPlanner(cfg config.Config, logger *log.Logger, m *metrics.Metrics) *Planner {
	return &Planner{
		cfg:     cfg,
		logger:  logger.With("component", "planner"),
		metrics: m,
		store:   NewStore(cfg.PlansDir),
	}
}

// Store exposes the planner's plan store
func (p *Planner) Store() *Store {
	return p.store
}

// CreateExecutionPlan builds a dependency-ordered plan from the document
// summary. It fails only when the summary is absent or the generated graph
// contains a cycle; a thin summary falls back to a minimal task set.
func (p *Planner) CreateExecutionPlan(doc *summary.DocumentSummary, projectName string) (*ExecutionPlan, error) {
	if doc == nil {
		if p.metrics != nil {
			p.metrics.PlanGenerations.WithLabelValues("error").Inc()
		}
		return nil, errors.NewSummaryMissingError()
	}

	remote := doc.RemoteHint
	if remote == "" {
		remote = p.cfg.RemoteURL
	}
	name := DeriveProjectName(projectName, remote, doc.ProjectInfo.Name)

	now := time.Now().UTC()
	gen := newTaskGenerator()

	// Fixed skeleton: setup and docs carry no dependencies.
	gen.add(TaskItem{
		Name:            "Project setup",
		Description:     "Create the project working directory and baseline structure",
		Category:        CategorySetup,
		Priority:        1,
		EstimatedEffort: 1,
	})
	docsID := gen.add(TaskItem{
		Name:            "Generate project documentation",
		Description:     "Produce architecture and module documentation from the design document",
		Category:        CategoryDocs,
		Priority:        1,
		EstimatedEffort: 2,
	})

	// One task per identified module, API group, table, and UI component;
	// each depends solely on the docs task.
	for _, module := range doc.BusinessModules {
		gen.add(TaskItem{
			Name:            fmt.Sprintf("Implement module: %s", module.Name),
			Description:     module.Description,
			Category:        CategoryBackend,
			Priority:        2,
			EstimatedEffort: 3,
			Dependencies:    []string{docsID},
		})
	}
	for _, group := range groupEndpoints(doc.APIEndpoints) {
		gen.add(TaskItem{
			Name:            fmt.Sprintf("Implement API group: %s", group.name),
			Description:     fmt.Sprintf("%d endpoints under /%s", len(group.endpoints), group.name),
			Category:        CategoryBackend,
			Priority:        2,
			EstimatedEffort: float64(len(group.endpoints)),
			Dependencies:    []string{docsID},
		})
	}
	for _, table := range doc.DataTables {
		gen.add(TaskItem{
			Name:            fmt.Sprintf("Create table: %s", table.Name),
			Description:     table.Description,
			Category:        CategoryDatabase,
			Priority:        2,
			EstimatedEffort: 1,
			Dependencies:    []string{docsID},
		})
	}
	for _, component := range doc.UIComponents {
		gen.add(TaskItem{
			Name:            fmt.Sprintf("Build UI component: %s", component.Name),
			Description:     component.Description,
			Category:        CategoryFrontend,
			Priority:        3,
			EstimatedEffort: 2,
			Dependencies:    []string{docsID},
		})
	}

	// Thin summary: still produce something buildable.
	if doc.IsEmpty() {
		gen.add(TaskItem{
			Name:            "Scaffold application skeleton",
			Description:     "Generate a generic application skeleton for the project",
			Category:        CategoryBackend,
			Priority:        2,
			EstimatedEffort: 3,
			Dependencies:    []string{docsID},
		})
	}

	// Tests depend on every backend and frontend task produced above.
	var codeTaskIDs []string
	for _, task := range gen.tasks {
		if task.Category == CategoryBackend || task.Category == CategoryFrontend {
			codeTaskIDs = append(codeTaskIDs, task.ID)
		}
	}
	testID := gen.add(TaskItem{
		Name:            "Write integration tests",
		Description:     "Generate test suites covering the implemented modules",
		Category:        CategoryTest,
		Priority:        4,
		EstimatedEffort: 2,
		Dependencies:    codeTaskIDs,
	})

	// The final publish task depends on the full set of test tasks.
	gen.add(TaskItem{
		Name:            "Commit and publish",
		Description:     "Commit generated sources and push the build branch",
		Category:        CategoryGit,
		Priority:        5,
		EstimatedEffort: 1,
		Dependencies:    []string{testID},
	})

	order, err := topologicalOrder(gen.tasks)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PlanGenerations.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	graph := make(map[string][]string, len(gen.tasks))
	for _, task := range gen.tasks {
		deps := make([]string, len(task.Dependencies))
		copy(deps, task.Dependencies)
		graph[task.ID] = deps
	}

	executionPlan := &ExecutionPlan{
		PlanID:          uuid.NewString(),
		ProjectName:     name,
		BranchName:      DeriveBranchName(doc.BranchHint, name, now),
		CreatedAt:       now,
		Tasks:           gen.tasks,
		DependencyGraph: graph,
		ExecutionOrder:  order,
	}

	if err := executionPlan.Validate(); err != nil {
		if p.metrics != nil {
			p.metrics.PlanGenerations.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.PlanGenerations.WithLabelValues("success").Inc()
		p.metrics.PlanTaskCount.Observe(float64(len(executionPlan.Tasks)))
	}

	p.logger.Info("execution plan created",
		"plan_id", executionPlan.PlanID,
		"project", executionPlan.ProjectName,
		"branch", executionPlan.BranchName,
		"tasks", len(executionPlan.Tasks))

	return executionPlan, nil
}

// SaveExecutionPlan persists the plan artifacts and returns their location
func (p *Planner) SaveExecutionPlan(executionPlan *ExecutionPlan) (string, error) {
	return p.store.Save(executionPlan)
}

// LoadExecutionPlan reloads a stored plan by id
func (p *Planner) LoadExecutionPlan(planID string) (*ExecutionPlan, error) {
	return p.store.Load(planID)
}

// taskGenerator assigns stable, unique ids as tasks are appended. Input
// order is preserved because it is the topological-sort tie-break.
type taskGenerator struct {
	tasks []TaskItem
	seen  map[string]int
}

func newTaskGenerator() *taskGenerator {
	return &taskGenerator{seen: make(map[string]int)}
}

func (g *taskGenerator) add(task TaskItem) string {
	base := taskSlug(task)
	id := base
	g.seen[base]++
	if n := g.seen[base]; n > 1 {
		id = fmt.Sprintf("%s-%d", base, n)
	}

	task.ID = id
	task.Status = StatusPending
	if task.Dependencies == nil {
		task.Dependencies = []string{}
	}
	g.tasks = append(g.tasks, task)
	return id
}

func taskSlug(task TaskItem) string {
	switch task.Category {
	case CategorySetup:
		return "setup-project"
	case CategoryDocs:
		return "generate-docs"
	case CategoryTest:
		return "test-suite"
	case CategoryGit:
		return "publish"
	default:
		return fmt.Sprintf("%s-%s", task.Category, SanitizeProjectName(task.Name))
	}
}

type endpointGroup struct {
	name      string
	endpoints []summary.APIEndpoint
}

// groupEndpoints buckets endpoints by their first meaningful path segment,
// skipping a leading "api" segment. Group order follows first appearance.
func groupEndpoints(endpoints []summary.APIEndpoint) []endpointGroup {
	var order []string
	byName := make(map[string][]summary.APIEndpoint)

	for _, ep := range endpoints {
		name := endpointGroupName(ep.Path)
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], ep)
	}

	groups := make([]endpointGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, endpointGroup{name: name, endpoints: byName[name]})
	}
	return groups
}

func endpointGroupName(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || strings.EqualFold(segment, "api") ||
			(len(segment) == 2 && segment[0] == 'v' && segment[1] >= '0' && segment[1] <= '9') {
			continue
		}
		return strings.ToLower(segment)
	}
	return "root"
}
