package normalize

// Literal report fixtures in the exact layout the assessment service prints.

const fullTextReport = `
================================================================================
                    🏥 COMPREHENSIVE HEALTH ASSESSMENT REPORT 🏥
================================================================================

📊 OVERALL HEALTH SCORE: 49.8/100 (Grade: F)
⚠️  COMPOSITE RISK LEVEL: 50.2% (HIGH)

--------------------------------------------------------------------------------
📋 INDIVIDUAL HEALTH RISK BREAKDOWN:
--------------------------------------------------------------------------------
  🫀 Heart Disease Risk:      65.5%  [HIGH]
  🩸 Diabetes Risk:           42.0%  [MODERATE]
  💊 Hypertension Risk:       58.3%  [HIGH]
  ⚖️  Obesity Risk:            35.0%  [MODERATE]

--------------------------------------------------------------------------------
⚖️  RISK WEIGHTING FACTORS:
--------------------------------------------------------------------------------
  Heart Disease:  25%
  Diabetes:       25%
  Hypertension:   25%
  Obesity:        25%

--------------------------------------------------------------------------------
💡 PERSONALIZED HEALTH RECOMMENDATIONS:
--------------------------------------------------------------------------------
  🫀 HEART HEALTH: 65.5% risk - High. Consult a cardiologist soon.
     - Monitor blood pressure and cholesterol regularly
     - Engage in 30+ minutes of cardio exercise daily
     - Reduce saturated fat and sodium intake
  🩸 DIABETES: 42.0% risk - Moderate. Focus on prevention.
     - Maintain healthy weight through diet and exercise
     - Limit sugary beverages and processed foods
  💊 BLOOD PRESSURE: 58.3% risk - High. Monitor BP regularly.
     - Reduce sodium intake (< 2000mg/day)
     - Practice stress management techniques
     - Avoid excessive alcohol and caffeine
  ⚖️ WEIGHT MANAGEMENT: 35.0% risk - Moderate. Room for improvement.
     - Maintain calorie balance and portion control
     - Increase daily physical activity

================================================================================
⚕️  DISCLAIMER: This is an AI-based assessment. Please consult healthcare
   professionals for medical advice and diagnosis.
================================================================================
`

// Blocks out of order, with the long "DIABETES PREVENTION" title
const shuffledRecommendations = `📊 OVERALL HEALTH SCORE: 91.0/100 (Grade: A+)
⚠️  COMPOSITE RISK LEVEL: 9.0% (LOW)
💡 PERSONALIZED HEALTH RECOMMENDATIONS:
--------------------------------------------------------------------------------
  ⚖️ WEIGHT MANAGEMENT: 5.0% risk - Low. Healthy weight!
     - Maintain current healthy eating patterns
  💊 BLOOD PRESSURE: 8.0% risk - Low. Great!
     - Continue healthy habits and regular exercise
  🩸 DIABETES PREVENTION: 10.0% risk - Low. Excellent!
     - Maintain balanced diet with controlled portions
  🫀 HEART HEALTH: 12.0% risk - Low. Keep up the good work!
     - Continue healthy lifestyle habits
================================================================================
  🫀 HEART HEALTH: ignored, after the separator
`

const partialTextReport = `📊 OVERALL HEALTH SCORE: 72.5/100 (Grade: B)
  🫀 Heart Disease Risk:      18.2%  [LOW]
  💊 Hypertension Risk:      104.0%  [CRITICAL]
`
