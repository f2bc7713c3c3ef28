package app

import (
	"CourseHub/internal/models"
	"CourseHub/pkg/logger"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type seedUser struct {
	name, email, password string
	roles                 []string
}

var demoUsers = []seedUser{
	{"John Doe", "john@example.com", "password123", []string{models.ClientRole, models.AdminRole}},
	{"Jane Smith", "jane@example.com", "password123", []string{models.ClientRole}},
	{"Demo User", "demo@example.com", "demo123", []string{models.ClientRole}},
}

func demoCourses() []models.Course {
	course := func(title, description, price, image, category, instructor, duration, level string) models.Course {
		return models.Course{
			Title:       title,
			Description: description,
			Price:       decimal.RequireFromString(price),
			Image:       image,
			Category:    category,
			Instructor:  instructor,
			Duration:    duration,
			Level:       level,
		}
	}
	return []models.Course{
		course("Introduction to Web Development",
			"Master the fundamentals of web development in this comprehensive course. Learn HTML5, CSS3, and JavaScript from scratch. Build responsive websites and understand how the web works. Perfect for absolute beginners who want to start their coding journey. Includes hands-on projects and real-world examples.",
			"0", "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=800",
			"Web Development", "Sarah Johnson", "6 weeks", models.LevelBeginner),
		course("Advanced React & Redux Masterclass",
			"Take your React skills to the next level! Deep dive into React hooks, context API, Redux toolkit, and advanced patterns. Learn to build scalable applications with proper state management. Cover testing with Jest and React Testing Library. Build a complete e-commerce application as the final project.",
			"99.99", "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=800",
			"Frontend", "Michael Chen", "8 weeks", models.LevelAdvanced),
		course("Node.js Backend Development",
			"Build powerful backend applications with Node.js and Express. Learn REST API design, authentication with JWT, database integration with MongoDB and PostgreSQL. Cover security best practices, testing, and deployment strategies. Create a full-featured API by the end of the course.",
			"79.99", "https://images.unsplash.com/photo-1627398242454-45a1465c2479?w=800",
			"Backend", "David Wilson", "7 weeks", models.LevelIntermediate),
		course("Python for Data Science",
			"Start your data science journey with Python! Learn pandas, NumPy, matplotlib, and scikit-learn. Understand data cleaning, visualization, and basic machine learning concepts. Work with real datasets and complete hands-on projects. No prior programming experience required.",
			"0", "https://images.unsplash.com/photo-1526374965328-7f61d4dc18c5?w=800",
			"Data Science", "Emily Brown", "10 weeks", models.LevelBeginner),
		course("Full Stack MERN Development",
			"Become a full-stack developer with the MERN stack (MongoDB, Express, React, Node.js). Build complete web applications from frontend to backend. Learn deployment on cloud platforms, CI/CD pipelines, and DevOps basics. Includes three major projects and career guidance.",
			"149.99", "https://images.unsplash.com/photo-1517694712202-14dd9538aa97?w=800",
			"Full Stack", "Alex Turner", "12 weeks", models.LevelIntermediate),
		course("UI/UX Design Fundamentals",
			"Learn the principles of great user interface and user experience design. Master Figma, understand color theory, typography, and layout. Study user research methods and usability testing. Create a complete portfolio-ready project. Great for developers who want to improve their design skills.",
			"59.99", "https://images.unsplash.com/photo-1561070791-2526d30994b5?w=800",
			"Design", "Lisa Anderson", "5 weeks", models.LevelBeginner),
		course("Docker & Kubernetes Essentials",
			"Master containerization and orchestration. Learn Docker fundamentals, create Dockerfiles, work with Docker Compose. Understand Kubernetes architecture, deployments, services, and scaling. Deploy applications to cloud Kubernetes clusters. Essential for modern DevOps practices.",
			"89.99", "https://images.unsplash.com/photo-1667372393119-3d4c48d07fc9?w=800",
			"DevOps", "Robert Martinez", "6 weeks", models.LevelIntermediate),
		course("JavaScript Algorithms & Data Structures",
			"Ace your coding interviews! Master essential algorithms and data structures using JavaScript. Cover arrays, linked lists, trees, graphs, sorting, and searching algorithms. Practice with hundreds of coding challenges. Perfect preparation for technical interviews at top tech companies.",
			"0", "https://images.unsplash.com/photo-1515879218367-8466d910aaa4?w=800",
			"Computer Science", "Chris Lee", "8 weeks", models.LevelIntermediate),
	}
}

type seedUsers interface {
	CountUsers(ctx context.Context) (int, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

type seedCourses interface {
	CreateCourse(ctx context.Context, c models.Course) (uuid.UUID, error)
}

type passwordHasher func(password string) (string, error)

// seed fills an empty database with the demo catalog and accounts. It does
// nothing once any user exists.
func seed(ctx context.Context, log logger.Log, users seedUsers, courses seedCourses, hash passwordHasher) error {
	n, err := users.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("database already seeded", "users", n)
		return nil
	}

	for _, u := range demoUsers {
		hashed, err := hash(u.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.email, err)
		}
		if _, err := users.CreateUser(ctx, models.User{
			Name:     u.name,
			Email:    u.email,
			Password: hashed,
			Roles:    u.roles,
		}); err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
	}

	// first course in the list is the newest
	base := time.Now().UTC()
	for i, c := range demoCourses() {
		c.CreatedAt = base.Add(-time.Duration(i) * time.Minute)
		if _, err := courses.CreateCourse(ctx, c); err != nil {
			return fmt.Errorf("create course %q: %w", c.Title, err)
		}
	}

	log.Info("database seeded", "users", len(demoUsers), "courses", len(demoCourses()))
	return nil
}
