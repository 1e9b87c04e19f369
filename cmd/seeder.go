package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			for _, table := range []string{"audit_logs", "approvals", "approval_flows", "comments", "work_items", "reports", "user_profiles", "work_categories", "projects", "organizations"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		if err := db.Exec("INSERT INTO organizations (id, name, slug, created_at, updated_at) VALUES (1, 'Acme Corp', 'acme', now(), now()) ON CONFLICT (id) DO NOTHING").Error; err != nil {
			log.Fatalf("failed to seed organization: %v", err)
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		profiles := []struct {
			Email string
			Name  string
			Role  string
			Sub   string
		}{
			{"admin@acme.example", "Alice Admin", "admin", "sub-admin"},
			{"manager@acme.example", "Mori Manager", "manager", "sub-manager"},
			{"lead@acme.example", "Lena Lead", "manager", "sub-lead"},
			{"taro@acme.example", "Taro Member", "member", "sub-taro"},
			{"hana@acme.example", "Hana Member", "member", "sub-hana"},
		}

		for _, p := range profiles {
			var exists int
			row := db.Raw("SELECT 1 FROM user_profiles WHERE email = ?", p.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("profile %s already exists\n", p.Email)
				continue
			}
			err := db.Exec(
				"INSERT INTO user_profiles (org_id, email, display_name, password_hash, role, external_sub, is_active, created_at, updated_at) VALUES (1, ?, ?, ?, ?, ?, true, now(), now())",
				p.Email, p.Name, string(hash), p.Role, p.Sub,
			).Error
			if err != nil {
				log.Fatalf("failed to insert profile %s: %v", p.Email, err)
			}
			fmt.Println("Seeded profile:", p.Email)
		}

		projects := []string{"Internal Platform", "Customer Portal"}
		for _, name := range projects {
			var exists int
			row := db.Raw("SELECT 1 FROM projects WHERE org_id = 1 AND name = ?", name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO projects (org_id, name, is_active, created_at) VALUES (1, ?, true, now())", name).Error; err != nil {
				log.Fatalf("failed to insert project %s: %v", name, err)
			}
			fmt.Println("Seeded project:", name)
		}

		categories := []string{"Development", "Meeting", "Review", "Support"}
		for _, name := range categories {
			var exists int
			row := db.Raw("SELECT 1 FROM work_categories WHERE org_id = 1 AND name = ?", name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO work_categories (org_id, name, is_active, created_at) VALUES (1, ?, true, now())", name).Error; err != nil {
				log.Fatalf("failed to insert work category %s: %v", name, err)
			}
			fmt.Println("Seeded work category:", name)
		}

		// one generic rule per project pointing at the manager profile
		err = db.Exec(`
			INSERT INTO approval_flows (org_id, project_id, approver_id, applicant_id, approval_level, created_at)
			SELECT 1, p.id, u.id, NULL, 1, now()
			FROM projects p, user_profiles u
			WHERE p.org_id = 1 AND u.email = 'manager@acme.example'
			AND NOT EXISTS (
				SELECT 1 FROM approval_flows f
				WHERE f.org_id = 1 AND f.project_id = p.id AND f.approver_id = u.id AND f.applicant_id IS NULL
			)`).Error
		if err != nil {
			log.Fatalf("failed to seed approval flows: %v", err)
		}
		fmt.Println("Seeded approval flow rules")
	},
}
