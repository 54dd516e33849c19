package server

// migrate runs database migrations
func (s *Server) migrate() error {
	migrations := []string{
		migrationUsers,
		migrationSessions,
		migrationContent,
		migrationOrders,
		migrationNotifications,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE,
    phone VARCHAR(20) UNIQUE NOT NULL,
    class_id VARCHAR(32),
    board VARCHAR(32),
    password_hash VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
`

const migrationSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id),
    token VARCHAR(64) UNIQUE NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
`

const migrationContent = `
CREATE TABLE IF NOT EXISTS content (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    type VARCHAR(16) NOT NULL,
    subject TEXT NOT NULL,
    class_id VARCHAR(32) NOT NULL,
    board VARCHAR(32),
    price INTEGER NOT NULL DEFAULT 0,
    is_free BOOLEAN NOT NULL DEFAULT FALSE,
    file_url TEXT,
    preview_pages INTEGER,
    pages INTEGER,
    chapters INTEGER,
    duration TEXT,
    lessons INTEGER,
    instructor TEXT,
    description TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_content_class ON content(class_id, type);
`

const migrationOrders = `
CREATE TABLE IF NOT EXISTS orders (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    order_type VARCHAR(16) NOT NULL,
    items JSONB,
    class_id VARCHAR(32),
    package_type VARCHAR(32),
    amount INTEGER NOT NULL,
    payment_method VARCHAR(32) NOT NULL,
    payment_status VARCHAR(32) NOT NULL,
    order_status VARCHAR(32) NOT NULL,
    tracking_id TEXT,
    address JSONB,
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at);
`

const migrationNotifications = `
CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id),
    title TEXT NOT NULL,
    body TEXT,
    read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at);
`

// seedContent loads a small demo catalog on first run
func (s *Server) seedContent() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM content`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	type seed struct {
		id, title, typ, subject, classID, board string
		price                                   int
		free                                    bool
		pages, chapters, lessons                int
		duration, instructor                    string
	}

	seeds := []seed{
		{id: "pdf-c10-sci-1", title: "Science Notes Vol. 1", typ: "pdf", subject: "Science", classID: "class10", board: "state", price: 199, pages: 120, chapters: 8},
		{id: "pdf-c10-sci-2", title: "Science Notes Vol. 2", typ: "pdf", subject: "Science", classID: "class10", board: "state", price: 199, pages: 135, chapters: 9},
		{id: "pdf-c10-math-1", title: "Mathematics Practice Set", typ: "pdf", subject: "Mathematics", classID: "class10", board: "cbse", price: 249, pages: 180, chapters: 12},
		{id: "pdf-c10-sample", title: "Sample Paper 2026", typ: "pdf", subject: "Science", classID: "class10", board: "state", free: true, pages: 24, chapters: 1},
		{id: "pdf-c12-phy-1", title: "Physics Formula Handbook", typ: "pdf", subject: "Physics", classID: "class12", board: "cbse", price: 299, pages: 96, chapters: 14},
		{id: "pdf-neet-bio-1", title: "NEET Biology Question Bank", typ: "pdf", subject: "Biology", classID: "neet", price: 349, pages: 240, chapters: 22},
		{id: "vid-c10-sci-1", title: "Light and Reflection", typ: "video", subject: "Science", classID: "class10", board: "state", price: 299, lessons: 12, duration: "6h 30m", instructor: "A. Deshmukh"},
		{id: "vid-c10-intro", title: "Board Exam Strategy", typ: "video", subject: "Science", classID: "class10", board: "state", free: true, lessons: 1, duration: "25m", instructor: "A. Deshmukh"},
		{id: "vid-c12-chem-1", title: "Organic Chemistry Basics", typ: "video", subject: "Chemistry", classID: "class12", board: "cbse", price: 399, lessons: 18, duration: "9h 15m", instructor: "R. Iyer"},
		{id: "vid-neet-phy-1", title: "NEET Physics Crash Course", typ: "video", subject: "Physics", classID: "neet", price: 499, lessons: 30, duration: "15h", instructor: "R. Iyer"},
	}

	for _, it := range seeds {
		_, err := s.db.Exec(`
			INSERT INTO content (id, title, type, subject, class_id, board,
				price, is_free, pages, chapters, lessons, duration, instructor)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			it.id, it.title, it.typ, it.subject, it.classID,
			nullIfEmpty(it.board), it.price, it.free,
			it.pages, it.chapters, it.lessons,
			nullIfEmpty(it.duration), nullIfEmpty(it.instructor))
		if err != nil {
			return err
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
