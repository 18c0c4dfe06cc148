package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-diet-planner/internal/app"
	"ai-diet-planner/internal/config"
	"ai-diet-planner/internal/database"
	"ai-diet-planner/internal/dietapi"
	"ai-diet-planner/internal/dietplan"
	"ai-diet-planner/internal/importer"
	"ai-diet-planner/internal/llm"
	"ai-diet-planner/internal/logging"
	"ai-diet-planner/internal/metrics"
	"ai-diet-planner/internal/planner"
	"ai-diet-planner/internal/shopping"
	"ai-diet-planner/internal/storage"
)

const defaultUser = "cli"

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.Env)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	extractor, err := newExtractor(cfg)
	if err != nil {
		log.Fatalf("Failed to load ingredient table: %v", err)
	}

	textGen, closeGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}
	defer closeGen()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	planStore, err := storage.NewPlanStore(cfg.PlanStoragePath)
	if err != nil {
		log.Fatalf("Failed to initialize plan store: %v", err)
	}

	planRepo := planner.NewPlanRepository(db.SQL)
	var mealPlanner *planner.Planner
	if textGen != nil {
		mealPlanner = planner.NewPlanner(textGen, planRepo)
	}
	var backend dietapi.Client
	if cfg.BackendEnabled() {
		backend = dietapi.NewClient(cfg)
	}

	application := app.NewApp(
		cfg,
		extractor,
		mealPlanner,
		planRepo,
		shopping.NewRepository(db.SQL),
		metrics.NewStore(db.SQL),
		importer.NewImporter(textGen),
		backend,
	)

	c := &cli{ctx: ctx, app: application, store: planStore}

	switch os.Args[1] {
	case "generate":
		err = c.generate(os.Args[2:])
	case "import":
		err = c.importPlan(os.Args[2:])
	case "sync":
		err = c.sync(os.Args[2:])
	case "show-day":
		err = c.showDay(os.Args[2:])
	case "week":
		err = c.week(os.Args[2:])
	case "shopping":
		err = c.shopping(os.Args[2:])
	case "list":
		err = c.list()
	case "metrics-cleanup":
		err = c.metricsCleanup(os.Args[2:])
	case "plans-cleanup":
		var n int64
		if n, err = application.CleanupPlans(ctx); err == nil {
			fmt.Printf("Successfully removed %d old plans.\n", n)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func newExtractor(cfg *config.Config) (*dietplan.Extractor, error) {
	if cfg.IngredientTablePath == "" {
		return dietplan.NewExtractor(), nil
	}
	table, err := dietplan.LoadIngredientTable(cfg.IngredientTablePath)
	if err != nil {
		return nil, err
	}
	return dietplan.NewExtractor(dietplan.WithIngredientTable(table)), nil
}

type cli struct {
	ctx   context.Context
	app   *app.App
	store *storage.PlanStore
}

// planSource resolves -plan (database ID) or -file (plan store name) to plan text.
type planSource struct {
	planID *string
	file   *string
}

func addPlanSource(fs *flag.FlagSet) planSource {
	return planSource{
		planID: fs.String("plan", "", "Stored plan ID"),
		file:   fs.String("file", "", "Plan file name in PLAN_STORAGE_PATH"),
	}
}

func (c *cli) rawText(src planSource) (string, error) {
	switch {
	case *src.file != "":
		pf, err := c.store.Load(*src.file)
		if err != nil {
			return "", err
		}
		return pf.RawText, nil
	case *src.planID != "":
		plan, err := c.app.Plan(c.ctx, *src.planID)
		if err != nil {
			return "", err
		}
		return plan.RawText, nil
	}
	return "", fmt.Errorf("one of -plan or -file is required")
}

func (c *cli) saveCopy(name string, plan *planner.StoredPlan) error {
	if name == "" {
		return nil
	}
	if err := c.store.Save(name, plan.RawText, plan.Profile); err != nil {
		return err
	}
	fmt.Printf("Saved plan file '%s'.\n", name)
	return nil
}

func (c *cli) generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	user := fs.String("user", defaultUser, "User ID")
	bmi := fs.Float64("bmi", dietplan.DefaultBMI, "Body mass index")
	bmr := fs.String("bmr", dietplan.DefaultBMR, "Basal metabolic rate (kcal)")
	target := fs.String("target", dietplan.DefaultTargetCalories, "Daily calorie target")
	save := fs.String("save", "", "Also save the plan to a file with this name")
	fs.Parse(args)

	request := strings.Join(fs.Args(), " ")
	if request == "" {
		return fmt.Errorf("usage: generate [flags] <request>")
	}

	fmt.Printf("Generating diet plan for: \"%s\"...\n", request)
	plan, err := c.app.GeneratePlan(c.ctx, *user, request, dietplan.Profile{BMI: *bmi, BMR: *bmr, TargetCalories: *target})
	if err != nil {
		return err
	}

	fmt.Printf("Plan %s stored (%d days).\n\n", plan.ID, plan.DayCount())
	printWeek(c.app.Extractor().Week(plan.RawText))
	return c.saveCopy(*save, plan)
}

func (c *cli) importPlan(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	user := fs.String("user", defaultUser, "User ID")
	url := fs.String("url", "", "Import from a web page")
	payload := fs.String("payload", "", "Import a backend JSON payload file")
	text := fs.String("text", "", "Import a raw plan text file")
	save := fs.String("save", "", "Also save the plan to a file with this name")
	fs.Parse(args)

	var (
		plan *planner.StoredPlan
		err  error
	)
	switch {
	case *url != "":
		plan, err = c.app.ImportURL(c.ctx, *user, *url)
	case *payload != "":
		var data []byte
		if data, err = os.ReadFile(*payload); err == nil {
			plan, err = c.app.ImportPayload(c.ctx, *user, data)
		}
	case *text != "":
		var data []byte
		if data, err = os.ReadFile(*text); err == nil {
			plan, err = c.app.ImportRaw(c.ctx, *user, string(data), dietplan.DefaultProfile())
		}
	default:
		return fmt.Errorf("one of -url, -payload or -text is required")
	}
	if err != nil {
		return err
	}

	fmt.Printf("Imported plan %s (%d days).\n", plan.ID, plan.DayCount())
	return c.saveCopy(*save, plan)
}

func (c *cli) sync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	user := fs.String("user", defaultUser, "User ID")
	save := fs.String("save", "", "Also save the plan to a file with this name")
	fs.Parse(args)

	plan, err := c.app.SyncFromBackend(c.ctx, *user)
	if err != nil {
		return err
	}
	fmt.Printf("Synced plan %s (%d days).\n", plan.ID, plan.DayCount())
	return c.saveCopy(*save, plan)
}

func (c *cli) showDay(args []string) error {
	fs := flag.NewFlagSet("show-day", flag.ExitOnError)
	src := addPlanSource(fs)
	day := fs.Int("day", 1, "Day number (1 or greater)")
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	if *day < 1 {
		return app.ErrInvalidDay
	}
	raw, err := c.rawText(src)
	if err != nil {
		return err
	}

	rec := c.app.Extractor().Day(raw, *day)
	if *asJSON {
		return printJSON(rec)
	}

	fmt.Printf("=== DAY %d · %s ===\n", rec.DayNumber, rec.DayName)
	if !rec.Found {
		fmt.Println("(this day is not in the plan)")
	} else if rec.Theme != "" {
		fmt.Println(rec.Theme)
	}
	for _, m := range rec.Meals {
		fmt.Printf("\n%-10s %s\n", m.Type+":", m.Description)
		if !m.Available {
			continue
		}
		fmt.Printf("           %d kcal, P %dg, C %dg, F %dg, Fiber %dg, %s\n",
			m.Calories, m.ProteinGrams, m.CarbsGrams, m.FatGrams, m.FiberGrams, m.CostEstimate)
		fmt.Printf("           Note: %s\n", m.MedicalNote)
		for _, ing := range m.Ingredients {
			fmt.Printf("           - %s (%s)\n", ing.Name, ing.Amount)
		}
	}
	return nil
}

func (c *cli) week(args []string) error {
	fs := flag.NewFlagSet("week", flag.ExitOnError)
	src := addPlanSource(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	raw, err := c.rawText(src)
	if err != nil {
		return err
	}

	week := c.app.Extractor().Week(raw)
	if *asJSON {
		return printJSON(week)
	}
	printWeek(week)
	return nil
}

func (c *cli) shopping(args []string) error {
	fs := flag.NewFlagSet("shopping", flag.ExitOnError)
	src := addPlanSource(fs)
	fs.Parse(args)

	var items []shopping.Item
	if *src.planID != "" {
		list, err := c.app.ShoppingList(c.ctx, *src.planID)
		if err != nil {
			return err
		}
		items = list.Items
	} else {
		raw, err := c.rawText(src)
		if err != nil {
			return err
		}
		items = shopping.BuildList(c.app.Extractor().Days(raw))
	}

	fmt.Println("=== SHOPPING LIST ===")
	for _, item := range items {
		fmt.Printf("- %-24s %s\n", item.Name, item.Amount)
	}
	return nil
}

func (c *cli) list() error {
	names, err := c.store.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func (c *cli) metricsCleanup(args []string) error {
	fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	fs.Parse(args)

	affected, err := c.app.CleanupMetrics()
	if err != nil {
		return err
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func printWeek(week []dietplan.DaySummary) {
	fmt.Println("=== WEEKLY DIET PLAN ===")
	for _, d := range week {
		fmt.Printf("\nDay %d %-10s %s\n", d.DayNumber, d.DayName, d.Theme)
		fmt.Printf("  Breakfast: %s\n", d.Breakfast)
		fmt.Printf("  Lunch:     %s\n", d.Lunch)
		fmt.Printf("  Dinner:    %s\n", d.Dinner)
		fmt.Printf("  Total:     %s kcal\n", d.TotalCalories)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printUsage() {
	fmt.Println("Usage: ai-diet-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate           Generate a 7-day plan with the LLM")
	fmt.Println("  import             Import a plan from -url, -payload or -text")
	fmt.Println("  sync               Fetch the user's plan from the diet backend")
	fmt.Println("  show-day           Show the meals of one day (-plan ID | -file NAME, -day N)")
	fmt.Println("  week               Show the weekly overview")
	fmt.Println("  shopping           Show the shopping list")
	fmt.Println("  list               List saved plan files")
	fmt.Println("  metrics-cleanup    Remove metric records past METRICS_RETENTION_DAYS")
	fmt.Println("  plans-cleanup      Remove plans past PLAN_RETENTION_DAYS")
}
