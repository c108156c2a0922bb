package task

// Prompt is one entry of the built-in practice prompt bank.
type Prompt struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"prompt"`
}

// Prompts returns the built-in prompt bank for the task type.
func (t Type) Prompts() []Prompt {
	switch t {
	case Email:
		return emailPrompts
	case Survey:
		return surveyPrompts
	default:
		return nil
	}
}

var emailPrompts = []Prompt{
	{
		ID:    1,
		Title: "Complaint Email",
		Text: `You recently purchased a laptop from TechStore, but it has been experiencing technical issues since the first day. Write an email to the customer service department at TechStore.

Include the following information:
- Your name and order number (use any order number)
- Description of the problems you're experiencing
- Request for a replacement or refund
- Your preferred resolution

Write 150-200 words.`,
	},
	{
		ID:    2,
		Title: "Apology Email",
		Text: `You were supposed to meet your friend Sarah for lunch yesterday, but you completely forgot about the appointment. Write an email to Sarah apologizing for missing the lunch.

Include the following:
- A sincere apology
- Explanation for why you missed the appointment
- Offer to reschedule
- Suggest a way to make it up to her

Write 150-200 words.`,
	},
	{
		ID:    3,
		Title: "Job Application Follow-up",
		Text: `You applied for a marketing position at ABC Company two weeks ago and haven't heard back yet. Write a follow-up email to the hiring manager.

Include the following:
- Reference to your original application
- Reiterate your interest in the position
- Mention any relevant updates since your application
- Request information about the hiring timeline

Write 150-200 words.`,
	},
	{
		ID:    4,
		Title: "Recommendation Request",
		Text: `You're applying for a graduate program and need a letter of recommendation from your former professor, Dr. Johnson. Write an email requesting this recommendation.

Include the following:
- Remind Dr. Johnson of your academic relationship
- Explain the program you're applying to
- Provide the deadline for the recommendation
- Offer to provide any additional information needed

Write 150-200 words.`,
	},
	{
		ID:    5,
		Title: "Meeting Request",
		Text: `You need to discuss an important project with your colleague, Mike, who works in a different department. Write an email requesting a meeting.

Include the following:
- Brief description of the project
- Why you need to meet with Mike specifically
- Suggest a few possible meeting times
- Mention the expected duration of the meeting

Write 150-200 words.`,
	},
}

var surveyPrompts = []Prompt{
	{
		ID:    1,
		Title: "Work-Life Balance Survey",
		Text: `A local business magazine is conducting a survey about work-life balance. Please respond to the following questions:

1. How many hours do you typically work per week?
2. What challenges do you face in maintaining a good work-life balance?
3. What strategies do you use to manage stress and maintain well-being?
4. How has your work-life balance changed over the past five years?
5. What advice would you give to someone struggling with work-life balance?

Provide detailed answers with specific examples and explanations. Write 200-250 words.`,
	},
	{
		ID:    2,
		Title: "Technology Usage Survey",
		Text: `A technology research company is studying how people use digital devices in their daily lives. Please answer the following questions:

1. What types of digital devices do you use most frequently?
2. How has technology changed the way you communicate with others?
3. What are the benefits and drawbacks of increased technology use?
4. How do you manage screen time and digital wellness?
5. What technology trends do you think will be most important in the next decade?

Support your opinions with personal experiences and examples. Write 200-250 words.`,
	},
	{
		ID:    3,
		Title: "Environmental Awareness Survey",
		Text: `An environmental organization is gathering opinions about climate change and sustainability. Please respond to these questions:

1. How concerned are you about climate change and why?
2. What environmental practices do you follow in your daily life?
3. What barriers prevent you from being more environmentally friendly?
4. How do you think individuals can make the biggest impact on environmental issues?
5. What role should governments and businesses play in addressing climate change?

Provide thoughtful responses with specific examples and suggestions. Write 200-250 words.`,
	},
	{
		ID:    4,
		Title: "Education and Learning Survey",
		Text: `A university is conducting research on lifelong learning and education preferences. Please answer these questions:

1. What motivates you to continue learning new skills or knowledge?
2. What are the most effective learning methods for you personally?
3. How has your approach to learning changed since you were younger?
4. What challenges do you face when trying to learn something new?
5. How do you think education should adapt to meet future workforce needs?

Include personal experiences and specific examples in your responses. Write 200-250 words.`,
	},
	{
		ID:    5,
		Title: "Community Involvement Survey",
		Text: `A community development organization is studying civic engagement and volunteerism. Please respond to these questions:

1. How involved are you in your local community and why?
2. What types of community activities or organizations interest you most?
3. What barriers prevent people from getting more involved in their communities?
4. How do you think technology affects community engagement?
5. What would make you more likely to participate in community events or volunteer work?

Provide detailed answers with examples from your own experience. Write 200-250 words.`,
	},
}
