package services

import (
	"time"

	"github.com/gosimple/slug"

	"github.com/smartstudy/smart-study-backend/models"
)

const demoTopic = "Quantum Mechanics"

// DemoSessionID is the fixed id of the built-in demo lesson. Loading the
// demo twice returns the existing session instead of inserting a duplicate.
func DemoSessionID() string {
	return "demo-" + slug.Make(demoTopic)
}

// DemoSession builds the built-in demo lesson in the requested language.
func DemoSession(lang models.Language) models.StudySession {
	asset := demoAssetEN()
	fileName := "Quantum_Mechanics_Intro.pdf"
	if lang == models.LangArabic {
		asset = demoAssetAR()
		fileName = "مقدمة_ميكانيكا_الكم.pdf"
	}
	return models.StudySession{
		ID:            DemoSessionID(),
		FileName:      fileName,
		PageRange:     "Demo",
		Asset:         asset,
		Illustrations: []string{},
		ChatHistory:   []models.ChatMessage{},
		Timestamp:     time.Now().UnixMilli(),
	}
}

func demoConnections() []models.VisualConnection {
	return []models.VisualConnection{
		{From: 0, To: 1}, {From: 3, To: 0}, {From: 5, To: 3}, {From: 1, To: 2},
	}
}

func demoAssetEN() models.AcademicAsset {
	return models.AcademicAsset{
		Meta: models.AssetMeta{TopicTitle: "Quantum Mechanics", ReadingTime: "15 min", DifficultyLevel: "Hard"},
		Summary: models.AssetSummary{
			Content: "Quantum mechanics is a fundamental theory in physics that provides a description of the physical properties of nature at the scale of atoms and subatomic particles. Unlike classical physics, energy, momentum, angular momentum, and other quantities of a bound system are restricted to discrete values (quantization).\n\nCentral to the theory are the concepts of wave–particle duality, the uncertainty principle, and the observer effect. The mathematical formulation involves the wave function, which provides information about the probability amplitude of position, momentum, and other physical properties of a particle.",
			EnglishKeywords: []string{"Quantum Mechanics", "Wave Function", "Uncertainty", "Physics"},
		},
		Flashcards: []models.Flashcard{
			{ID: 1, FrontText: "What is the Wave Function (Ψ)?", BackText: "A mathematical description of the quantum state of an isolated quantum system, whose square magnitude gives probability density.", Type: "definition"},
			{ID: 2, FrontText: "Heisenberg Uncertainty Principle", BackText: "States that the position and momentum of a particle cannot both be measured exactly, at the same time (Δx · Δp ≥ ℏ/2).", Type: "formula"},
			{ID: 3, FrontText: "What is Spin?", BackText: "An intrinsic form of angular momentum carried by elementary particles.", Type: "definition"},
			{ID: 4, FrontText: "Schrödinger Equation", BackText: "A linear partial differential equation that governs the wave function of a quantum-mechanical system.", Type: "definition"},
			{ID: 5, FrontText: "Wave-Particle Duality", BackText: "The concept that every quantum entity exhibits both particle and wave-like properties.", Type: "process"},
		},
		MindMapData: models.MindMapData{
			RootNode: "Quantum Mechanics",
			Branches: []models.MindMapBranch{
				{Title: "Wave Function", Icon: "🌊", ColorCode: "#3b82f6", KeyPoints: []string{"Psi (ψ)", "Probability", "State"}},
				{Title: "Uncertainty", Icon: "🌫️", ColorCode: "#a855f7", KeyPoints: []string{"Heisenberg", "Position/Momentum", "Limits"}},
				{Title: "Quantum Spin", Icon: "🔄", ColorCode: "#ec4899", KeyPoints: []string{"Intrinsic Momentum", "Fermions", "Stern-Gerlach"}},
				{Title: "Schrödinger Eq", Icon: "📐", ColorCode: "#10b981", KeyPoints: []string{"Time Evolution", "Hamiltonian", "Dynamics"}},
			},
		},
		SpacedRepetitionSchedule: []models.SpacedRepetitionTask{
			{DayOffset: 1, NotificationTitle: "Review: Spins", ActivityType: "Review", Question: "Explain the Stern-Gerlach experiment results."},
			{DayOffset: 3, NotificationTitle: "Quiz: Constants", ActivityType: "MCQ", Question: "Which constant is central to Quantum Mechanics?", QuizData: &models.QuizData{
				Question:      "Which constant is central?",
				Options:       []string{"Planck Constant", "Gravitational Constant", "Speed of Light"},
				CorrectOption: "Planck Constant",
			}},
		},
		VisualForge: &models.VisualForgeData{
			Concepts: []models.VisualConcept{
				{ID: 0, Label: "Superposition", Description: "State overlap", Shape: "hexagon", Importance: 9, Color: "#22d3ee"},
				{ID: 1, Label: "Entanglement", Description: "Spooky action", Shape: "star", Importance: 10, Color: "#f472b6"},
				{ID: 2, Label: "Tunneling", Description: "Barrier pass", Shape: "circle", Importance: 7, Color: "#fbbf24"},
				{ID: 3, Label: "Duality", Description: "Wave vs Particle", Shape: "rect", Importance: 8, Color: "#a855f7"},
				{ID: 4, Label: "Operator", Description: "Math rule", Shape: "circle", Importance: 5, Color: "#9ca3af"},
				{ID: 5, Label: "Planck", Description: "Quantum constant", Shape: "star", Importance: 8, Color: "#34d399"},
			},
			Connections: demoConnections(),
		},
		ChatbotPersonaContext: "You are Werner Heisenberg. Explain concepts with a focus on uncertainty and matrix mechanics.",
	}
}

func demoAssetAR() models.AcademicAsset {
	return models.AcademicAsset{
		Meta: models.AssetMeta{TopicTitle: "ميكانيكا الكم", ReadingTime: "١٥ دقيقة", DifficultyLevel: "Hard"},
		Summary: models.AssetSummary{
			Content: "ميكانيكا الكم هي نظرية أساسية في الفيزياء توفر وصفًا للخصائص الفيزيائية للطبيعة على مستوى الذرات والجسيمات دون الذرية. على عكس الفيزياء الكلاسيكية، فإن الطاقة والزخم والزخم الزاوي والكميات الأخرى لنظام مقيد تقتصر على قيم منفصلة (تكميم).\n\nمن المفاهيم المركزية للنظرية ازدواجية الموجة والجسيم، ومبدأ عدم اليقين، وتأثير المراقب. تتضمن الصياغة الرياضية الدالة الموجية، التي توفر معلومات حول سعة الاحتمال للموضع والزخم والخصائص الفيزيائية الأخرى للجسيم.",
			EnglishKeywords: []string{"Quantum Mechanics", "Wave Function", "Uncertainty", "Physics"},
		},
		Flashcards: []models.Flashcard{
			{ID: 1, FrontText: "ما هي الدالة الموجية (Ψ)؟", BackText: "وصف رياضي للحالة الكمية لنظام كمي معزول، ويعطي مربع مقدارها كثافة الاحتمال.", Type: "definition"},
			{ID: 2, FrontText: "مبدأ عدم اليقين لهيزنبرغ", BackText: "ينص على أنه لا يمكن تحديد موضع وزخم جسيم بدقة تامة في نفس الوقت (Δx · Δp ≥ ℏ/2).", Type: "formula"},
			{ID: 3, FrontText: "ما هو اللف المغزلي (Spin)؟", BackText: "شكل جوهري من الزخم الزاوي تحمله الجسيمات الأولية.", Type: "definition"},
			{ID: 4, FrontText: "معادلة شرودنغر", BackText: "معادلة تفاضلية جزئية خطية تحكم الدالة الموجية لنظام ميكانيكي كمي.", Type: "definition"},
			{ID: 5, FrontText: "ازدواجية الموجة والجسيم", BackText: "مفهوم أن كل كيان كمي يظهر خصائص تشبه الجسيمات وخصائص تشبه الموجات.", Type: "process"},
		},
		MindMapData: models.MindMapData{
			RootNode: "ميكانيكا الكم",
			Branches: []models.MindMapBranch{
				{Title: "الدالة الموجية", Icon: "🌊", ColorCode: "#3b82f6", KeyPoints: []string{"Psi (ψ)", "الاحتمالية", "الحالة"}},
				{Title: "عدم اليقين", Icon: "🌫️", ColorCode: "#a855f7", KeyPoints: []string{"هيزنبرغ", "الموقع/الزخم", "الحدود"}},
				{Title: "اللف المغزلي", Icon: "🔄", ColorCode: "#ec4899", KeyPoints: []string{"الزخم الجوهري", "الفرميونات", "شتيرن-غيرلاخ"}},
				{Title: "معادلة شرودنغر", Icon: "📐", ColorCode: "#10b981", KeyPoints: []string{"التطور الزمني", "الهاملتوني", "الديناميكا"}},
			},
		},
		SpacedRepetitionSchedule: []models.SpacedRepetitionTask{
			{DayOffset: 1, NotificationTitle: "مراجعة: اللف المغزلي", ActivityType: "Review", Question: "اشرح نتائج تجربة شتيرن-غيرلاخ."},
			{DayOffset: 3, NotificationTitle: "اختبار: الثوابت", ActivityType: "MCQ", Question: "أي ثابت هو مركزي لميكانيكا الكم؟", QuizData: &models.QuizData{
				Question:      "أي ثابت هو مركزي؟",
				Options:       []string{"ثابت بلانك", "ثابت الجاذبية", "سرعة الضوء"},
				CorrectOption: "ثابت بلانك",
			}},
		},
		VisualForge: &models.VisualForgeData{
			Concepts: []models.VisualConcept{
				{ID: 0, Label: "التراكب", Description: "تداخل الحالات", Shape: "hexagon", Importance: 9, Color: "#22d3ee"},
				{ID: 1, Label: "التشابك", Description: "تأثير عن بعد", Shape: "star", Importance: 10, Color: "#f472b6"},
				{ID: 2, Label: "النفق الكمي", Description: "اختراق الحاجز", Shape: "circle", Importance: 7, Color: "#fbbf24"},
				{ID: 3, Label: "الازدواجية", Description: "موجة ضد جسيم", Shape: "rect", Importance: 8, Color: "#a855f7"},
				{ID: 4, Label: "المؤثر", Description: "قاعدة رياضية", Shape: "circle", Importance: 5, Color: "#9ca3af"},
				{ID: 5, Label: "بلانك", Description: "الثابت الكمي", Shape: "star", Importance: 8, Color: "#34d399"},
			},
			Connections: demoConnections(),
		},
		ChatbotPersonaContext: "أنت فيرنر هيزنبرغ. اشرح المفاهيم مع التركيز على عدم اليقين وميكانيكا المصفوفات.",
	}
}
